package logic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RedisClient defines the interface for Redis client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// Searcher is the web-search provider
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) (*search.Result, error)
}

// ObjectGenerator is the structured-generation provider
type ObjectGenerator interface {
	GenerateObject(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error)
}

// EventSink receives analytics events. Enqueue never blocks the caller.
type EventSink interface {
	Enqueue(event *models.PredictionEvent) bool
}

// Notifier delivers alerts for noteworthy predictions
type Notifier interface {
	NotifyPrediction(ctx context.Context, record *models.PredictionRecord, analysis *models.PredictionAnalysis) error
}

// PredictionStore persists prediction records
type PredictionStore interface {
	Create(ctx context.Context, record *models.PredictionRecord) (*models.PredictionRecord, error)
	List(ctx context.Context, opts models.ListOptions) ([]models.PredictionRecord, error)
	Get(ctx context.Context, userID, id string) (*models.PredictionRecord, error)
}

// SportsDataService aggregates the search-backed data for one match
type SportsDataService interface {
	GetComprehensiveSportsData(ctx context.Context, req models.MatchRequest) (*models.ComprehensiveSportsData, error)
}

// PredictionService runs the prediction pipeline and serves stored predictions
type PredictionService interface {
	Submit(ctx context.Context, userID string, req models.CreatePredictionRequest) (*models.PredictionResult, error)
	Get(ctx context.Context, userID, id string) (*models.PredictionResult, error)
	History(ctx context.Context, userID string, filter HistoryFilter) (*models.HistorySummary, error)
}

// LiveTracker serves live snapshots of a user's pending predictions
type LiveTracker interface {
	Snapshot(ctx context.Context, userID string) (*models.LiveSnapshot, error)
}

// AnalyticsService reads the prediction event log
type AnalyticsService interface {
	Summary(ctx context.Context, days int) (*models.AnalyticsSummary, error)
}
