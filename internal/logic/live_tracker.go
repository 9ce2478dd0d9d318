package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

const (
	defaultLiveMaxMatches = 5
	defaultLiveLockTTL    = 20 * time.Second
	defaultLiveCacheTTL   = 5 * time.Minute
)

// releaseLockScript deletes KEYS[1] only while it still holds ARGV[1], so a
// refresh that outlived its lock never frees a newer holder's lock
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

func liveLockKey(userID string) string     { return "live:lock:" + userID }
func liveSnapshotKey(userID string) string { return "live:snapshot:" + userID }

// LiveTrackerConfig wires the live tracker. Events is optional.
type LiveTrackerConfig struct {
	Store      PredictionStore
	Search     Searcher
	Parser     ResultParser
	Redis      RedisClient
	Events     EventSink
	MaxMatches int
	LockTTL    time.Duration
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

type liveTracker struct {
	store      PredictionStore
	search     Searcher
	parser     ResultParser
	redis      RedisClient
	events     EventSink
	maxMatches int
	lockTTL    time.Duration
	cacheTTL   time.Duration
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewLiveTracker(cfg LiveTrackerConfig) LiveTracker {
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = defaultLiveMaxMatches
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLiveLockTTL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultLiveCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &liveTracker{
		store:      cfg.Store,
		search:     cfg.Search,
		parser:     cfg.Parser,
		redis:      cfg.Redis,
		events:     cfg.Events,
		maxMatches: cfg.MaxMatches,
		lockTTL:    cfg.LockTTL,
		cacheTTL:   cfg.CacheTTL,
		logger:     cfg.Logger.Sugar(),
		now:        time.Now,
	}
}

// Snapshot refreshes the live view of the user's pending predictions.
// While another refresh for the same user holds the lock, the last cached
// snapshot is served instead.
func (t *liveTracker) Snapshot(ctx context.Context, userID string) (*models.LiveSnapshot, error) {
	token := uuid.NewString()
	acquired, err := t.redis.SetNX(ctx, liveLockKey(userID), token, t.lockTTL).Result()
	switch {
	case err != nil:
		// Redis down: refresh unguarded
		t.logger.Warnw("Live refresh lock unavailable", "user", userID, "error", err)
	case !acquired:
		return t.cached(ctx, userID)
	default:
		defer t.releaseLock(context.WithoutCancel(ctx), userID, token)
	}

	start := t.now()
	snapshot, err := t.refresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(snapshot); err == nil {
		if err := t.redis.Set(ctx, liveSnapshotKey(userID), b, t.cacheTTL).Err(); err != nil {
			t.logger.Warnw("Failed to cache live snapshot", "user", userID, "error", err)
		}
	}

	if t.events != nil {
		t.events.Enqueue(&models.PredictionEvent{
			Type:       models.EventLiveRefresh,
			UserID:     userID,
			DurationMs: t.now().Sub(start).Milliseconds(),
			Timestamp:  t.now().UTC(),
		})
	}
	return snapshot, nil
}

func (t *liveTracker) releaseLock(ctx context.Context, userID, token string) {
	released, err := t.redis.Eval(ctx, releaseLockScript, []string{liveLockKey(userID)}, token).Int()
	if err != nil {
		t.logger.Warnw("Failed to release live refresh lock", "user", userID, "error", err)
		return
	}
	if released == 0 {
		t.logger.Warnw("Live refresh outlived its lock", "user", userID, "ttl", t.lockTTL)
	}
}

func (t *liveTracker) cached(ctx context.Context, userID string) (*models.LiveSnapshot, error) {
	b, err := t.redis.Get(ctx, liveSnapshotKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRefreshInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("read live snapshot: %w", err)
	}
	var snapshot models.LiveSnapshot
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return nil, fmt.Errorf("decode live snapshot: %w", err)
	}
	snapshot.Cached = true
	return &snapshot, nil
}

// refresh searches every tracked match concurrently. A match whose search
// fails is left out of the snapshot.
func (t *liveTracker) refresh(ctx context.Context, userID string) (*models.LiveSnapshot, error) {
	snapshot := &models.LiveSnapshot{Matches: []models.LiveMatchData{}, RefreshedAt: t.now().UTC()}

	records, err := t.store.List(ctx, models.ListOptions{
		UserID: userID,
		Order:  models.OrderDesc,
		Limit:  models.DefaultListLimit,
	})
	if err != nil {
		t.logger.Errorw("Failed to load predictions for live tracking", "user", userID, "error", err)
		return snapshot, nil
	}

	pending := make([]models.PredictionRecord, 0, t.maxMatches)
	for _, r := range records {
		if r.Status == models.StatusPending {
			pending = append(pending, r)
			if len(pending) == t.maxMatches {
				break
			}
		}
	}

	results := make([]*models.LiveMatchData, len(pending))
	var g errgroup.Group
	for i, rec := range pending {
		g.Go(func() error {
			res, err := t.search.Search(ctx, liveScoreQuery(rec.HomeTeam, rec.AwayTeam, rec.Sport), search.Options{Type: search.TypeNews, Limit: 3})
			if err != nil {
				t.logger.Warnw("Live search failed", "prediction", rec.ID, "error", err)
				return nil
			}
			m := t.parser.LiveMatch(rec, res)
			results[i] = &m
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, m := range results {
		if m != nil {
			snapshot.Matches = append(snapshot.Matches, *m)
		}
	}
	return snapshot, nil
}
