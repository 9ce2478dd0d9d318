package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockClickHouseConn implements driver.Conn for testing. Rows appended to
// every sent batch are recorded.
type MockClickHouseConn struct {
	driver.Conn

	mu         sync.Mutex
	queries    []string
	sent       [][]any
	PrepareErr error
	SendErr    error
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.PrepareErr != nil {
		return nil, m.PrepareErr
	}
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return &MockBatch{conn: m}, nil
}

// SentRows returns a copy of every row that reached Send
func (m *MockClickHouseConn) SentRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.sent...)
}

type MockBatch struct {
	driver.Batch

	conn *MockClickHouseConn
	rows [][]any
	sent bool
}

func (m *MockBatch) Append(v ...any) error {
	if len(v) != 14 {
		return errors.New("unexpected column count")
	}
	m.rows = append(m.rows, v)
	return nil
}

func (m *MockBatch) IsSent() bool { return m.sent }

func (m *MockBatch) Rows() int { return len(m.rows) }

func (m *MockBatch) Send() error {
	if m.conn.SendErr != nil {
		return m.conn.SendErr
	}
	m.sent = true
	m.conn.mu.Lock()
	m.conn.sent = append(m.conn.sent, m.rows...)
	m.conn.mu.Unlock()
	return nil
}

func (m *MockBatch) Abort() error { return nil }
