// Package ai is the structured-generation adapter. It talks to an
// Ollama-compatible /api/generate endpoint and constrains the output with
// the request's "format" JSON schema.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	ErrEmptyResponse = errors.New("ai provider returned an empty response")
	ErrNotAnObject   = errors.New("ai provider did not return a JSON object")
)

var (
	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_oracle_ai_generation_duration_seconds",
		Help:    "Duration of structured generation requests",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	})

	generationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_oracle_ai_generation_failures_total",
		Help: "Total number of failed structured generation requests",
	})
)

// Config configures the AI client.
type Config struct {
	// BaseURL is the provider endpoint, e.g. http://localhost:11434
	BaseURL string

	// Model is the model name to use.
	Model string

	// Timeout bounds a single generation request.
	Timeout time.Duration

	// Temperature is passed through to the model. Zero uses the model default.
	Temperature float64

	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:11434",
		Model:       "llama3.2",
		Timeout:     90 * time.Second,
		Temperature: 0.4,
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Format  map[string]any   `json:"format,omitempty"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Client provides structured object generation.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger.Sugar(),
	}
}

// GenerateObject asks the model for a JSON object matching schema and
// returns the raw object. Schema conformance beyond "is an object" is the
// caller's job.
func (c *Client) GenerateObject(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	start := time.Now()
	obj, err := c.generateObject(ctx, prompt, schema)
	generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.Inc()
		c.logger.Warnw("Structured generation failed", "model", c.config.Model, "error", err)
		return nil, err
	}
	c.logger.Infow("Structured generation complete", "model", c.config.Model, "duration", time.Since(start), "bytes", len(obj))
	return obj, nil
}

func (c *Client) generateObject(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	req := generateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
		Format: schema,
	}
	if c.config.Temperature > 0 {
		req.Options = &generateOptions{Temperature: c.config.Temperature}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("generate failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return extractObject(genResp.Response)
}

// extractObject pulls the JSON object out of the model text, tolerating
// markdown code fences and leading chatter.
func extractObject(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx < 0 || endIdx < startIdx {
		return nil, ErrNotAnObject
	}
	text = text[startIdx : endIdx+1]

	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNotAnObject)
	}
	return json.RawMessage(text), nil
}

// Ping checks that the provider is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("version check failed with status %d", resp.StatusCode)
	}
	return nil
}
