package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/models"
)

func TestEnqueueFull(t *testing.T) {
	// Create a pool manually to avoid external dependencies
	cfg := PoolConfig{
		QueueSize: 1,
		Logger:    zap.NewNop(),
	}

	pool := &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.ctx = ctx
	pool.cancel = cancel
	defer cancel()

	// Fill the queue
	if !pool.Enqueue(&models.PredictionEvent{Type: models.EventPredictionCreated, UserID: "u1"}) {
		t.Fatal("Failed to enqueue first event")
	}

	// Second event should be shed immediately
	start := time.Now()
	enqueued := pool.Enqueue(&models.PredictionEvent{Type: models.EventPredictionCreated, UserID: "u2"})
	duration := time.Since(start)

	if enqueued {
		t.Error("Enqueue should have returned false when queue is full")
	}

	if duration > 10*time.Millisecond {
		t.Errorf("Enqueue took too long (%v), expected immediate return", duration)
	}
}

func TestPoolFlushesOnStop(t *testing.T) {
	ch := &MockClickHouseConn{}
	pool := NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     10,
		BatchSize:     100,
		FlushInterval: time.Hour,
		ClickHouse:    ch,
		Logger:        zap.NewNop(),
	})
	pool.Start(context.Background())

	for _, user := range []string{"a", "b", "c"} {
		if !pool.Enqueue(&models.PredictionEvent{Type: models.EventPredictionCreated, UserID: user, Sport: models.SportHockey}) {
			t.Fatalf("enqueue %s failed", user)
		}
	}
	pool.Stop()

	rows := ch.SentRows()
	if len(rows) != 3 {
		t.Fatalf("sent %d rows, want 3", len(rows))
	}
	for _, row := range rows {
		if row[2] != string(models.EventPredictionCreated) {
			t.Errorf("event_type = %v", row[2])
		}
		if row[5] != "hockey" {
			t.Errorf("sport = %v", row[5])
		}
	}

	if pool.Enqueue(&models.PredictionEvent{Type: models.EventPredictionCreated}) {
		t.Error("Enqueue after Stop should fail")
	}
	pool.Stop()
}

func TestPoolDrainsQueueWhenContextCancelled(t *testing.T) {
	ch := &MockClickHouseConn{}
	pool := NewPool(PoolConfig{
		WorkerCount:   1,
		QueueSize:     10,
		BatchSize:     100,
		FlushInterval: time.Hour,
		ClickHouse:    ch,
		Logger:        zap.NewNop(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		if !pool.Enqueue(&models.PredictionEvent{Type: models.EventPredictionFailed, UserID: "u"}) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	cancel()
	pool.Stop()

	if rows := ch.SentRows(); len(rows) != 5 {
		t.Errorf("sent %d rows, want 5", len(rows))
	}
}

func TestPoolFlushesOnBatchSize(t *testing.T) {
	ch := &MockClickHouseConn{}
	pool := NewPool(PoolConfig{
		WorkerCount:   1,
		QueueSize:     10,
		BatchSize:     2,
		FlushInterval: time.Hour,
		ClickHouse:    ch,
		Logger:        zap.NewNop(),
	})
	pool.Start(context.Background())
	defer pool.Stop()

	pool.Enqueue(&models.PredictionEvent{Type: models.EventLiveRefresh, UserID: "u"})
	pool.Enqueue(&models.PredictionEvent{Type: models.EventLiveRefresh, UserID: "u"})

	deadline := time.Now().Add(2 * time.Second)
	for len(ch.SentRows()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("batch was not flushed when full")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProcessBatchErrors(t *testing.T) {
	batch := []Job{{Event: &models.PredictionEvent{Type: models.EventPredictionFailed}, Timestamp: time.Now()}}

	p := NewPool(PoolConfig{ClickHouse: &MockClickHouseConn{PrepareErr: errors.New("down")}})
	if err := p.processBatch(batch); err == nil {
		t.Error("expected prepare error")
	}

	p = NewPool(PoolConfig{ClickHouse: &MockClickHouseConn{SendErr: errors.New("timeout")}})
	if err := p.processBatch(batch); err == nil {
		t.Error("expected send error")
	}
}

func TestConvertToClickHouseEvent(t *testing.T) {
	received := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ev := convertToClickHouseEvent(&models.PredictionEvent{
		Type:         models.EventPredictionCreated,
		UserID:       "user-1",
		PredictionID: "pred-1",
		Sport:        models.SportTableTennis,
		Detail:       models.DetailAdvanced,
		HomeTeam:     "Ma\tLong",
		AwayTeam:     strings.Repeat("x", 300),
		Confidence:   72.5,
		ValueRating:  8,
		DurationMs:   1500,
	}, `{"type":"prediction_created"}`, received)

	if !ev.Timestamp.Equal(received) {
		t.Errorf("Timestamp = %v, want receipt time", ev.Timestamp)
	}
	if ev.EventID == uuid.Nil {
		t.Error("EventID not assigned")
	}
	if ev.Sport != "table_tennis" || ev.Detail != "advanced" {
		t.Errorf("Sport/Detail = %q/%q", ev.Sport, ev.Detail)
	}
	if ev.HomeTeam != "MaLong" {
		t.Errorf("HomeTeam = %q", ev.HomeTeam)
	}
	if len(ev.AwayTeam) != maxTextLength {
		t.Errorf("AwayTeam length = %d", len(ev.AwayTeam))
	}
	if ev.Confidence != 72.5 || ev.ValueRating != 8 || ev.DurationMs != 1500 {
		t.Errorf("metrics = %v/%v/%v", ev.Confidence, ev.ValueRating, ev.DurationMs)
	}

	stamped := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ev = convertToClickHouseEvent(&models.PredictionEvent{Type: models.EventLiveRefresh, Timestamp: stamped}, "{}", received)
	if !ev.Timestamp.Equal(stamped) {
		t.Errorf("Timestamp = %v, want event time", ev.Timestamp)
	}
}

func TestDailyCountersKey(t *testing.T) {
	day := time.Date(2026, 10, 17, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	if got := DailyCountersKey(day); got != "predictions:daily:2026-10-18" {
		t.Errorf("DailyCountersKey = %q", got)
	}
}
