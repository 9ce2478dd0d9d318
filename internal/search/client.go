package search

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 10 * time.Second
	defaultLimit   = 10
	maxBodyBytes   = 4 << 20
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_oracle_searches_total",
		Help: "Total number of outbound search requests",
	}, []string{"type"})

	searchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_oracle_search_failures_total",
		Help: "Total number of failed outbound search requests",
	}, []string{"type"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_oracle_search_duration_seconds",
		Help:    "Duration of outbound search requests",
		Buckets: prometheus.DefBuckets,
	})
)

// APIError is returned when the provider answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search provider returned status %d: %s", e.StatusCode, e.Body)
}

// ClientConfig configures the search client
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 = unlimited
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to a SerpAPI-compatible JSON search endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		logger:     cfg.Logger.Sugar(),
	}
}

// Search issues one query. The context bounds both the rate limiter wait
// and the HTTP round trip.
func (c *Client) Search(ctx context.Context, query string, opts Options) (*Result, error) {
	kind := string(opts.Type)
	if kind == "" {
		kind = "web"
	}
	searchesTotal.WithLabelValues(kind).Inc()

	result, err := c.search(ctx, query, opts)
	if err != nil {
		searchFailures.WithLabelValues(kind).Inc()
		c.logger.Warnw("Search failed", "query", query, "type", kind, "error", err)
		return nil, err
	}
	return result, nil
}

func (c *Client) search(ctx context.Context, query string, opts Options) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search rate limiter: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	if opts.Type == TypeNews {
		params.Set("tbm", "nws")
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	searchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", c.redact(err))
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		if c.apiKey != "" {
			snippet = strings.ReplaceAll(snippet, c.apiKey, "REDACTED")
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	result.Query = query
	result.truncate(limit)
	return &result, nil
}

// redact drops the request URL, which carries the api key, from transport
// errors so it never reaches logs or the event store
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: c.baseURL, Err: urlErr.Err}
}

// readBody decodes the response according to its Content-Encoding
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	return data, nil
}
