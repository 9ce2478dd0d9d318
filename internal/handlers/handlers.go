package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/logic"
	"github.com/matchoracle/prediction-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// EventQueue reports the analytics worker backlog
type EventQueue interface {
	QueueDepth() int
}

// Postgres is the part of pgxpool.Pool the handlers use
type Postgres interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RedisPinger is satisfied by *redis.Client
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// AIPinger is satisfied by *ai.Client
type AIPinger interface {
	Ping(ctx context.Context) error
}

// AuthService issues, revokes and resolves bearer tokens
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	OnAuthStateChanged(cb func(models.AuthState)) func()
	State() models.AuthState
}

type Config struct {
	Events     EventQueue
	Postgres   Postgres // nil when predictions live in sqlite
	SQLite     *sql.DB  // nil when predictions live in postgres
	ClickHouse driver.Conn
	Redis      RedisPinger
	AI         AIPinger // optional readiness check for the generation provider
	Logger     *zap.Logger
	// AdminToken gates schema install; empty disables the endpoint
	AdminToken string
	// Services
	Auth        AuthService
	Predictions logic.PredictionService
	SportsData  logic.SportsDataService
	Live        logic.LiveTracker
	Analytics   logic.AnalyticsService
	// LiveRefreshInterval paces websocket snapshots
	LiveRefreshInterval time.Duration
}

type Handler struct {
	events      EventQueue
	pg          Postgres
	sqlite      *sql.DB
	ch          driver.Conn
	redis       RedisPinger
	ai          AIPinger
	adminToken  string
	logger      *zap.SugaredLogger
	validator   *validator.Validate
	auth        AuthService
	predictions logic.PredictionService
	sportsData  logic.SportsDataService
	live        logic.LiveTracker
	analytics   logic.AnalyticsService
	liveEvery   time.Duration
	hub         *liveHub
}

func New(cfg Config) *Handler {
	if cfg.LiveRefreshInterval <= 0 {
		cfg.LiveRefreshInterval = 30 * time.Second
	}
	validate := validator.New()
	// team names of only whitespace pass "required"
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	return &Handler{
		events:      cfg.Events,
		pg:          cfg.Postgres,
		sqlite:      cfg.SQLite,
		ch:          cfg.ClickHouse,
		redis:       cfg.Redis,
		ai:          cfg.AI,
		adminToken:  cfg.AdminToken,
		logger:      cfg.Logger.Sugar(),
		validator:   validate,
		auth:        cfg.Auth,
		predictions: cfg.Predictions,
		sportsData:  cfg.SportsData,
		live:        cfg.Live,
		analytics:   cfg.Analytics,
		liveEvery:   cfg.LiveRefreshInterval,
		hub:         newLiveHub(),
	}
}
