// Command api serves the match prediction HTTP API.
//
// @title Match Oracle Prediction API
// @version 1.0
// @description Real-time sports data aggregation and structured match predictions.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/matchoracle/prediction-api/docs"
	"github.com/matchoracle/prediction-api/internal/ai"
	"github.com/matchoracle/prediction-api/internal/auth"
	"github.com/matchoracle/prediction-api/internal/config"
	"github.com/matchoracle/prediction-api/internal/handlers"
	"github.com/matchoracle/prediction-api/internal/logic"
	"github.com/matchoracle/prediction-api/internal/notify"
	"github.com/matchoracle/prediction-api/internal/search"
	"github.com/matchoracle/prediction-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sugar := logger.Sugar()

	// Prediction store
	var (
		store  logic.PredictionStore
		pgConn handlers.Postgres
		sqlDB  *sql.DB
	)
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := logic.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		defer db.Close()
		sqlDB = db
		store = logic.NewSQLitePredictionStore(db)
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		pgConn = pool
		store = logic.NewPostgresPredictionStore(pool)
	}
	sugar.Infow("Prediction store ready", "driver", cfg.StoreDriver)

	// ClickHouse event log
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("clickhouse dsn: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("clickhouse: %w", err)
	}
	defer ch.Close()

	// Redis for counters, live cache and token revocation
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    ch,
		Redis:         rdb,
		Logger:        logger,
	})
	// the deferred Stop drains the queue after the server has shut down
	pool.Start(context.Background())
	defer pool.Stop()

	// Outbound providers
	searchClient := search.NewClient(search.ClientConfig{
		BaseURL:   cfg.SearchAPIURL,
		APIKey:    cfg.SearchAPIKey,
		Timeout:   cfg.SearchTimeout,
		RateLimit: float64(cfg.RateLimitPerSecond),
		Burst:     cfg.RateLimitBurst,
		Logger:    logger,
	})

	var parser logic.ResultParser = logic.NewPlaceholderParser()
	if cfg.SearchParser == config.ParserSnippet {
		parser = logic.NewSnippetParser(parser)
	}

	aiCfg := ai.DefaultConfig()
	aiCfg.BaseURL = cfg.AIBaseURL
	aiCfg.Model = cfg.AIModel
	aiCfg.Timeout = cfg.AITimeout
	aiCfg.Logger = logger
	generator := ai.NewClient(aiCfg)

	var notifier logic.Notifier
	if cfg.TelegramEnabled {
		tg, err := notify.NewTelegramNotifier(notify.TelegramConfig{
			BotToken:       cfg.TelegramBotToken,
			ChatID:         cfg.TelegramChatID,
			MinValueRating: cfg.TelegramMinValueRating,
			Logger:         logger,
		})
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		notifier = tg
	}

	// Services
	sportsData := logic.NewSportsDataService(searchClient, parser, logger)
	predictions := logic.NewPredictionService(logic.PredictionServiceConfig{
		SportsData: sportsData,
		Generator:  generator,
		Store:      store,
		Events:     pool,
		Notifier:   notifier,
		Logger:     logger,
	})
	live := logic.NewLiveTracker(logic.LiveTrackerConfig{
		Store:      store,
		Search:     searchClient,
		Parser:     parser,
		Redis:      rdb,
		Events:     pool,
		MaxMatches: cfg.LiveMaxMatches,
		Logger:     logger,
	})
	analytics := logic.NewAnalyticsService(ch, rdb, logger)

	watcher := auth.NewStateWatcher()
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, auth.NewRedisRevocationStore(rdb))
	authSvc := auth.NewService(issuer, watcher, cfg.LoginSecret, logger)
	watcher.MarkReady()

	h := handlers.New(handlers.Config{
		Events:              pool,
		Postgres:            pgConn,
		SQLite:              sqlDB,
		ClickHouse:          ch,
		Redis:               rdb,
		AI:                  generator,
		Logger:              logger,
		AdminToken:          cfg.AdminToken,
		Auth:                authSvc,
		Predictions:         predictions,
		SportsData:          sportsData,
		Live:                live,
		Analytics:           analytics,
		LiveRefreshInterval: cfg.LiveRefreshInterval,
	})
	unsubscribe := h.WatchAuthState()
	defer unsubscribe()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("API server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
