package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionEventType classifies rows in the analytics event log
type PredictionEventType string

const (
	EventPredictionCreated PredictionEventType = "prediction_created"
	EventPredictionFailed  PredictionEventType = "prediction_failed"
	EventSportsDataFailed  PredictionEventType = "sports_data_failed"
	EventPersistenceFailed PredictionEventType = "persistence_failed"
	EventLiveRefresh       PredictionEventType = "live_refresh"
)

// PredictionEvent is enqueued by the prediction pipeline and flushed to
// ClickHouse by the worker pool
type PredictionEvent struct {
	Type         PredictionEventType `json:"type" validate:"required"`
	UserID       string              `json:"user_id" validate:"required"`
	PredictionID string              `json:"prediction_id,omitempty"`
	Sport        Sport               `json:"sport"`
	Detail       DetailLevel         `json:"detail,omitempty"`
	HomeTeam     string              `json:"home_team,omitempty"`
	AwayTeam     string              `json:"away_team,omitempty"`
	Confidence   float64             `json:"confidence,omitempty"`
	ValueRating  float64             `json:"value_rating,omitempty"`
	DurationMs   int64               `json:"duration_ms,omitempty"`
	Error        string              `json:"error,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// ClickHouseEvent is the normalized row for match_oracle.prediction_events
type ClickHouseEvent struct {
	Timestamp    time.Time
	EventID      uuid.UUID
	EventType    string
	UserID       string
	PredictionID string
	Sport        string
	Detail       string
	HomeTeam     string
	AwayTeam     string
	Confidence   float32
	ValueRating  float32
	DurationMs   uint32
	Error        string
	RawJSON      string
}

// SportBreakdown is one row of the analytics dashboard
type SportBreakdown struct {
	Sport             string  `json:"sport"`
	Predictions       uint64  `json:"predictions"`
	Failures          uint64  `json:"failures"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageValue      float64 `json:"average_value_rating"`
}

// AnalyticsSummary backs the analytics tab
type AnalyticsSummary struct {
	Days              int              `json:"days"`
	TotalPredictions  uint64           `json:"total_predictions"`
	TotalFailures     uint64           `json:"total_failures"`
	AverageConfidence float64          `json:"average_confidence"`
	AverageDurationMs float64          `json:"average_duration_ms"`
	BySport           []SportBreakdown `json:"by_sport"`
	Today             map[string]int64 `json:"today"` // created predictions per sport, UTC day
	LastUpdated       time.Time        `json:"last_updated"`
}
