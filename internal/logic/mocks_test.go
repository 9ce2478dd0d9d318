package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

type searchCall struct {
	Query string
	Opts  search.Options
}

// fakeSearcher records every query and answers with SearchFunc
type fakeSearcher struct {
	mu         sync.Mutex
	calls      []searchCall
	SearchFunc func(ctx context.Context, query string, opts search.Options) (*search.Result, error)
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts search.Options) (*search.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{Query: query, Opts: opts})
	f.mu.Unlock()
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, query, opts)
	}
	return &search.Result{Query: query}, nil
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

type fakeGenerator struct {
	prompt   string
	schema   map[string]any
	Response any
	Err      error
}

func (f *fakeGenerator) GenerateObject(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	f.prompt = prompt
	f.schema = schema
	if f.Err != nil {
		return nil, f.Err
	}
	return json.Marshal(f.Response)
}

// memoryStore is an in-memory PredictionStore
type memoryStore struct {
	mu        sync.Mutex
	records   []models.PredictionRecord
	seq       int
	CreateErr error
	ListErr   error
}

func (m *memoryStore) Create(ctx context.Context, in *models.PredictionRecord) (*models.PredictionRecord, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	rec := *in
	rec.ID = "pred-" + strconv.Itoa(m.seq)
	rec.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *memoryStore) List(ctx context.Context, opts models.ListOptions) ([]models.PredictionRecord, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PredictionRecord{}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == opts.UserID {
			out = append(out, m.records[i])
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) Get(ctx context.Context, userID, id string) (*models.PredictionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id && r.UserID == userID {
			rec := r
			return &rec, nil
		}
	}
	return nil, ErrPredictionNotFound
}

type fakeEvents struct {
	mu     sync.Mutex
	events []models.PredictionEvent
	Full   bool
}

func (f *fakeEvents) Enqueue(event *models.PredictionEvent) bool {
	if f.Full {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return true
}

func (f *fakeEvents) Types() []models.PredictionEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PredictionEventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeNotifier struct {
	called chan string
	Err    error
}

func (f *fakeNotifier) NotifyPrediction(ctx context.Context, record *models.PredictionRecord, analysis *models.PredictionAnalysis) error {
	f.called <- record.ID
	return f.Err
}

// fakeRedis is a map-backed RedisClient
type fakeRedis struct {
	mu     sync.Mutex
	values map[string]string
	hashes map[string]map[string]string
	Err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, hashes: map[string]map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.Err != nil {
		return redis.NewStringResult("", f.Err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.Err != nil {
		return redis.NewStatusResult("", f.Err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	default:
		b, _ := json.Marshal(v)
		f.values[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.Err != nil {
		return redis.NewBoolResult(false, f.Err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

// Eval only understands the compare-and-delete lock release: KEYS[1] is
// removed when it holds ARGV[1]
func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	if f.Err != nil {
		return redis.NewCmdResult(nil, f.Err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[keys[0]]; ok && v == fmt.Sprint(args[0]) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (f *fakeRedis) put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.Err != nil {
		return redis.NewIntResult(0, f.Err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	if f.Err != nil {
		return redis.NewMapStringStringResult(nil, f.Err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

var errBoom = errors.New("boom")

func intPtr(i int) *int { return &i }
