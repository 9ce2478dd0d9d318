package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Search result parsers
const (
	ParserPlaceholder = "placeholder"
	ParserSnippet     = "snippet"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	StoreDriver   string
	PostgresURL   string
	SQLitePath    string
	ClickHouseURL string
	RedisURL      string

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Auth
	AccessTokenTTL time.Duration
	JWTSecret      string
	LoginSecret    string // derives per-user login credentials
	AdminToken     string // gates schema install; empty disables it

	// Rate limiting (outbound search)
	RateLimitPerSecond int
	RateLimitBurst     int

	// Search provider
	SearchAPIURL  string
	SearchAPIKey  string
	SearchTimeout time.Duration
	SearchParser  string

	// AI provider
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	// Live tracker
	LiveRefreshInterval time.Duration
	LiveMaxMatches      int

	// Telegram alerts
	TelegramEnabled        bool
	TelegramBotToken       string
	TelegramChatID         string
	TelegramMinValueRating float64
}

// Load loads configuration from environment variables, optionally layered
// over the file named by CONFIG_FILE.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Port: v.GetInt("PORT"),
		Env:  v.GetString("ENV"),

		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		SQLitePath:  v.GetString("SQLITE_PATH"),

		WorkerCount:   v.GetInt("WORKER_COUNT"),
		QueueSize:     v.GetInt("QUEUE_SIZE"),
		BatchSize:     v.GetInt("BATCH_SIZE"),
		FlushInterval: v.GetDuration("FLUSH_INTERVAL"),

		AccessTokenTTL: v.GetDuration("ACCESS_TOKEN_TTL"),
		AdminToken:     v.GetString("ADMIN_TOKEN"),

		RateLimitPerSecond: v.GetInt("RATE_LIMIT_PER_SECOND"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),

		SearchAPIURL:  v.GetString("SEARCH_API_URL"),
		SearchAPIKey:  v.GetString("SEARCH_API_KEY"),
		SearchTimeout: v.GetDuration("SEARCH_TIMEOUT"),
		SearchParser:  strings.ToLower(v.GetString("SEARCH_PARSER")),

		AIBaseURL: v.GetString("AI_BASE_URL"),
		AIModel:   v.GetString("AI_MODEL"),
		AITimeout: v.GetDuration("AI_TIMEOUT"),

		LiveRefreshInterval: v.GetDuration("LIVE_REFRESH_INTERVAL"),
		LiveMaxMatches:      v.GetInt("LIVE_MAX_MATCHES"),

		TelegramEnabled:        v.GetBool("TELEGRAM_ENABLED"),
		TelegramBotToken:       v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:         v.GetString("TELEGRAM_CHAT_ID"),
		TelegramMinValueRating: v.GetFloat64("TELEGRAM_MIN_VALUE_RATING"),
	}

	// CORS
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.StoreDriver != StoreDriverSQLite {
		if cfg.PostgresURL, err = getRequired(v, "POSTGRES_URL"); err != nil {
			return nil, err
		}
	}
	if cfg.ClickHouseURL, err = getRequired(v, "CLICKHOUSE_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getRequired(v, "REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = getRequired(v, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.LoginSecret, err = getRequired(v, "LOGIN_SECRET"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("SQLITE_PATH", "./data/predictions.db")

	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("QUEUE_SIZE", 10000)
	v.SetDefault("BATCH_SIZE", 500)
	v.SetDefault("FLUSH_INTERVAL", "1s")

	v.SetDefault("ACCESS_TOKEN_TTL", "24h")

	v.SetDefault("RATE_LIMIT_PER_SECOND", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("SEARCH_API_URL", "https://serpapi.com/search.json")
	v.SetDefault("SEARCH_TIMEOUT", "10s")
	v.SetDefault("SEARCH_PARSER", ParserPlaceholder)

	v.SetDefault("AI_BASE_URL", "http://localhost:11434")
	v.SetDefault("AI_MODEL", "llama3.2")
	v.SetDefault("AI_TIMEOUT", "90s")

	v.SetDefault("LIVE_REFRESH_INTERVAL", "30s")
	v.SetDefault("LIVE_MAX_MATCHES", 5)

	v.SetDefault("TELEGRAM_ENABLED", false)
	v.SetDefault("TELEGRAM_MIN_VALUE_RATING", 8.0)
}

// Validate checks that all configuration values are usable
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: postgres, sqlite")
	}
	switch c.SearchParser {
	case ParserPlaceholder, ParserSnippet:
	default:
		return fmt.Errorf("SEARCH_PARSER must be one of: placeholder, snippet")
	}
	if c.LoginSecret != "" && c.LoginSecret == c.JWTSecret {
		return fmt.Errorf("LOGIN_SECRET must differ from JWT_SECRET")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.LiveRefreshInterval < time.Second {
		return fmt.Errorf("LIVE_REFRESH_INTERVAL must be at least 1s")
	}
	if c.LiveMaxMatches < 1 {
		return fmt.Errorf("LIVE_MAX_MATCHES must be at least 1")
	}
	if c.TelegramEnabled {
		if c.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when telegram is enabled")
		}
		if c.TelegramChatID == "" {
			return fmt.Errorf("TELEGRAM_CHAT_ID is required when telegram is enabled")
		}
	}
	if c.TelegramMinValueRating < 1 || c.TelegramMinValueRating > 10 {
		return fmt.Errorf("TELEGRAM_MIN_VALUE_RATING must be between 1 and 10")
	}
	return nil
}

// IsDevelopment reports whether ENV selects development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getRequired(v *viper.Viper, key string) (string, error) {
	if value := v.GetString(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}
