package logic

import (
	"context"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockConn implements driver.Conn for testing
type MockConn struct {
	driver.Conn
	QueryFunc     func(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
	QueryRowFunc  func(ctx context.Context, query string, args ...interface{}) driver.Row
	QueryCalls    int
	QueryRowCalls int
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.QueryCalls++
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, args...)
	}
	return &MockRows{}, nil
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	m.QueryRowCalls++
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, query, args...)
	}
	return &MockRow{}
}

// MockRows yields Data one row at a time
type MockRows struct {
	driver.Rows
	Data  [][]interface{}
	Index int
}

func (m *MockRows) Next() bool {
	m.Index++
	return m.Index <= len(m.Data)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	if m.Index > len(m.Data) {
		return nil
	}
	for i, val := range m.Data[m.Index-1] {
		if i < len(dest) {
			assign(dest[i], val)
		}
	}
	return nil
}

func (m *MockRows) Close() error { return nil }
func (m *MockRows) Err() error   { return nil }

// MockRow scans Values, or fails with ScanErr
type MockRow struct {
	driver.Row
	Values  []interface{}
	ScanErr error
}

func (m *MockRow) Scan(dest ...interface{}) error {
	if m.ScanErr != nil {
		return m.ScanErr
	}
	for i, val := range m.Values {
		if i < len(dest) {
			assign(dest[i], val)
		}
	}
	return nil
}

func (m *MockRow) Err() error {
	return m.ScanErr
}

func assign(dest interface{}, val interface{}) {
	// Simple reflection to assign value to pointer
	v := reflect.ValueOf(dest).Elem()
	if val == nil {
		v.Set(reflect.Zero(v.Type()))
		return
	}
	valV := reflect.ValueOf(val)
	if valV.Type().ConvertibleTo(v.Type()) {
		v.Set(valV.Convert(v.Type()))
		return
	}
	v.Set(valV)
}
