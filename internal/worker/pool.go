// Package worker implements the buffered worker pool pattern for async event processing.
// This decouples prediction requests from analytics writes, providing:
// - Backpressure handling via load shedding
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/models"
)

// Prometheus metrics
var (
	eventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_oracle_events_ingested_total",
		Help: "Total number of events ingested",
	})

	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_oracle_events_processed_total",
		Help: "Total number of events processed by workers",
	})

	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_oracle_events_failed_total",
		Help: "Total number of events that failed processing",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_oracle_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_oracle_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	eventsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_oracle_events_load_shed_total",
		Help: "Total number of events dropped due to load shedding",
	})
)

// dailyCounterTTL keeps a week of per-day counters in Redis
const dailyCounterTTL = 8 * 24 * time.Hour

// DailyCountersKey is the Redis hash of created predictions per sport for a UTC day
func DailyCountersKey(day time.Time) string {
	return "predictions:daily:" + day.UTC().Format("2006-01-02")
}

// Job represents a unit of work for the worker pool
type Job struct {
	Event     *models.PredictionEvent
	RawJSON   string
	Timestamp time.Time
}

// Pipeliner is the part of the Redis client used for counter side effects
type Pipeliner interface {
	Pipeline() redis.Pipeliner
}

// PoolConfig configures the worker pool. Redis is optional.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Redis         Pipeliner
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async event processing
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	stopOnce sync.Once
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the worker pool, flushing queued events
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.jobQueue)
		p.wg.Wait()
		p.cancel()
		p.logger.Info("Worker pool stopped")
	})
}

// Enqueue adds an event to the queue without blocking. Returns false when
// the queue is full or the pool is stopped.
func (p *Pool) Enqueue(event *models.PredictionEvent) bool {
	rawJSON, _ := json.Marshal(event)

	job := Job{
		Event:     event,
		RawJSON:   string(rawJSON),
		Timestamp: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue event (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- job:
		eventsIngested.Inc()
		return true
	default:
		p.logger.Warnw("Worker queue full, dropping event", "type", event.Type)
		eventsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			eventsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			eventsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			// take whatever is already queued before exiting
			for {
				select {
				case job, ok := <-p.jobQueue:
					if !ok {
						flush()
						return
					}
					batch = append(batch, job)
					if len(batch) >= p.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// processBatch writes a batch of events to ClickHouse and updates the
// Redis counters
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO match_oracle.prediction_events (
			timestamp, event_id, event_type, user_id, prediction_id,
			sport, detail, home_team, away_team,
			confidence, value_rating, duration_ms, error, raw_json
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		ev := convertToClickHouseEvent(job.Event, job.RawJSON, job.Timestamp)
		err := chBatch.Append(
			ev.Timestamp,
			ev.EventID,
			ev.EventType,
			ev.UserID,
			ev.PredictionID,
			ev.Sport,
			ev.Detail,
			ev.HomeTeam,
			ev.AwayTeam,
			ev.Confidence,
			ev.ValueRating,
			ev.DurationMs,
			ev.Error,
			ev.RawJSON,
		)
		if err != nil {
			p.logger.Warnw("Failed to append event to batch", "error", err, "event_type", job.Event.Type)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}

	p.processBatchSideEffects(ctx, batch)
	return nil
}

// processBatchSideEffects bumps the per-day, per-sport counters for created
// predictions in a single pipeline
func (p *Pool) processBatchSideEffects(ctx context.Context, batch []Job) {
	if p.config.Redis == nil {
		return
	}

	pipe := p.config.Redis.Pipeline()
	touched := make(map[string]bool)
	for _, job := range batch {
		if job.Event.Type != models.EventPredictionCreated {
			continue
		}
		key := DailyCountersKey(eventTime(job.Event, job.Timestamp))
		pipe.HIncrBy(ctx, key, job.Event.Sport.String(), 1)
		touched[key] = true
	}
	if len(touched) == 0 {
		return
	}
	for key := range touched {
		pipe.Expire(ctx, key, dailyCounterTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		p.logger.Errorw("Redis pipeline failed", "error", err)
	}
}

func eventTime(event *models.PredictionEvent, receivedAt time.Time) time.Time {
	if event.Timestamp.IsZero() {
		return receivedAt
	}
	return event.Timestamp
}

// maxTextLength bounds free-text columns
const maxTextLength = 200

// convertToClickHouseEvent normalizes a prediction event for ClickHouse.
// receivedAt is used when the event carries no timestamp.
func convertToClickHouseEvent(event *models.PredictionEvent, rawJSON string, receivedAt time.Time) *models.ClickHouseEvent {
	ch := &models.ClickHouseEvent{
		Timestamp:    eventTime(event, receivedAt),
		EventID:      uuid.New(),
		EventType:    string(event.Type),
		UserID:       event.UserID,
		PredictionID: event.PredictionID,
		Detail:       string(event.Detail),
		HomeTeam:     sanitizeText(event.HomeTeam),
		AwayTeam:     sanitizeText(event.AwayTeam),
		Confidence:   float32(event.Confidence),
		ValueRating:  float32(event.ValueRating),
		Error:        sanitizeText(event.Error),
		RawJSON:      rawJSON,
	}
	if event.Sport.Valid() {
		ch.Sport = event.Sport.String()
	}
	if event.DurationMs > 0 {
		ch.DurationMs = uint32(event.DurationMs)
	}
	return ch
}

// reportQueueDepth publishes the queue gauge until the pool stops
func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// sanitizeText drops control characters and truncates to maxTextLength runes
func sanitizeText(s string) string {
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean && len(s) <= maxTextLength {
		return s
	}

	var sb strings.Builder
	sb.Grow(min(len(s), maxTextLength))
	n := 0
	for _, r := range s {
		if n == maxTextLength {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(r)
		n++
	}
	return sb.String()
}
