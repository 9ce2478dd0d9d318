package logic

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/worker"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
)

type analyticsService struct {
	ch     driver.Conn
	redis  RedisClient
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewAnalyticsService reads the prediction event log. redis may be nil, in
// which case today's counters are left empty.
func NewAnalyticsService(ch driver.Conn, redis RedisClient, logger *zap.Logger) AnalyticsService {
	return &analyticsService{ch: ch, redis: redis, logger: logger.Sugar(), now: time.Now}
}

// finite maps the NaN that avgIf yields over zero rows to 0
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Summary aggregates prediction outcomes over the last days
func (s *analyticsService) Summary(ctx context.Context, days int) (*models.AnalyticsSummary, error) {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	summary := &models.AnalyticsSummary{
		Days:        days,
		BySport:     []models.SportBreakdown{},
		Today:       map[string]int64{},
		LastUpdated: s.now().UTC(),
	}

	// Query 1: totals
	err := s.ch.QueryRow(ctx, `
		SELECT
			countIf(event_type = 'prediction_created') AS predictions,
			countIf(event_type IN ('prediction_failed', 'sports_data_failed', 'persistence_failed')) AS failures,
			avgIf(confidence, event_type = 'prediction_created') AS avg_confidence,
			avgIf(duration_ms, event_type = 'prediction_created') AS avg_duration
		FROM match_oracle.prediction_events
		WHERE timestamp >= now() - INTERVAL ? DAY
	`, days).Scan(&summary.TotalPredictions, &summary.TotalFailures, &summary.AverageConfidence, &summary.AverageDurationMs)
	if err != nil {
		return nil, fmt.Errorf("totals query failed: %w", err)
	}
	summary.AverageConfidence = finite(summary.AverageConfidence)
	summary.AverageDurationMs = finite(summary.AverageDurationMs)

	// Query 2: per sport
	rows, err := s.ch.Query(ctx, `
		SELECT
			sport,
			countIf(event_type = 'prediction_created') AS predictions,
			countIf(event_type IN ('prediction_failed', 'sports_data_failed', 'persistence_failed')) AS failures,
			avgIf(confidence, event_type = 'prediction_created') AS avg_confidence,
			avgIf(value_rating, event_type = 'prediction_created' AND value_rating > 0) AS avg_value
		FROM match_oracle.prediction_events
		WHERE timestamp >= now() - INTERVAL ? DAY
		  AND sport != ''
		GROUP BY sport
		ORDER BY predictions DESC
	`, days)
	if err != nil {
		return nil, fmt.Errorf("sport breakdown query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b models.SportBreakdown
		if err := rows.Scan(&b.Sport, &b.Predictions, &b.Failures, &b.AverageConfidence, &b.AverageValue); err != nil {
			return nil, fmt.Errorf("sport breakdown scan failed: %w", err)
		}
		b.AverageConfidence = finite(b.AverageConfidence)
		b.AverageValue = finite(b.AverageValue)
		summary.BySport = append(summary.BySport, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sport breakdown query failed: %w", err)
	}

	s.fillToday(ctx, summary)
	return summary, nil
}

// fillToday reads the worker's per-day Redis counters
func (s *analyticsService) fillToday(ctx context.Context, summary *models.AnalyticsSummary) {
	if s.redis == nil {
		return
	}
	counts, err := s.redis.HGetAll(ctx, worker.DailyCountersKey(s.now())).Result()
	if err != nil {
		s.logger.Warnw("Failed to read daily counters", "error", err)
		return
	}
	for sport, v := range counts {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		summary.Today[sport] = n
	}
}
