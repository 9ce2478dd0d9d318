package handlers

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/auth"
	"github.com/matchoracle/prediction-api/internal/logic"
	"github.com/matchoracle/prediction-api/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	SubmitFunc  func(ctx context.Context, userID string, req models.CreatePredictionRequest) (*models.PredictionResult, error)
	GetFunc     func(ctx context.Context, userID, id string) (*models.PredictionResult, error)
	HistoryFunc func(ctx context.Context, userID string, filter logic.HistoryFilter) (*models.HistorySummary, error)
}

func (m *MockPredictionService) Submit(ctx context.Context, userID string, req models.CreatePredictionRequest) (*models.PredictionResult, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, userID, req)
	}
	return &models.PredictionResult{Prediction: &models.PredictionRecord{ID: "pred-1", UserID: userID}}, nil
}

func (m *MockPredictionService) Get(ctx context.Context, userID, id string) (*models.PredictionResult, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	return nil, logic.ErrPredictionNotFound
}

func (m *MockPredictionService) History(ctx context.Context, userID string, filter logic.HistoryFilter) (*models.HistorySummary, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, filter)
	}
	return logic.Summarize(nil, filter), nil
}

// MockSportsDataService
type MockSportsDataService struct {
	GetFunc func(ctx context.Context, req models.MatchRequest) (*models.ComprehensiveSportsData, error)
}

func (m *MockSportsDataService) GetComprehensiveSportsData(ctx context.Context, req models.MatchRequest) (*models.ComprehensiveSportsData, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, req)
	}
	return &models.ComprehensiveSportsData{VenueInfo: models.DefaultVenueInfo()}, nil
}

// MockLiveTracker
type MockLiveTracker struct {
	SnapshotFunc func(ctx context.Context, userID string) (*models.LiveSnapshot, error)
}

func (m *MockLiveTracker) Snapshot(ctx context.Context, userID string) (*models.LiveSnapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, userID)
	}
	return &models.LiveSnapshot{Matches: []models.LiveMatchData{}}, nil
}

// MockAnalyticsService
type MockAnalyticsService struct {
	SummaryFunc func(ctx context.Context, days int) (*models.AnalyticsSummary, error)
}

func (m *MockAnalyticsService) Summary(ctx context.Context, days int) (*models.AnalyticsSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, days)
	}
	return &models.AnalyticsSummary{Days: days}, nil
}

// MockAuthService accepts any token of the form "token-<user>" and
// signs in users presenting the credential "cred-<user>"
type MockAuthService struct {
	mu        sync.Mutex
	callbacks []func(models.AuthState)
	Loading   bool
	LogoutErr error
}

func (m *MockAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Credential != "cred-"+req.UserID {
		return nil, auth.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "token-" + req.UserID, TokenType: "Bearer", User: models.User{ID: req.UserID}}, nil
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutErr != nil {
		return m.LogoutErr
	}
	user, err := m.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	m.publish(models.AuthState{Previous: user})
	return nil
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if len(token) <= len("token-") || token[:len("token-")] != "token-" {
		return nil, auth.ErrInvalidToken
	}
	return &models.User{ID: token[len("token-"):]}, nil
}

func (m *MockAuthService) OnAuthStateChanged(cb func(models.AuthState)) func() {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, cb)
	m.mu.Unlock()
	return func() {}
}

func (m *MockAuthService) State() models.AuthState {
	return models.AuthState{IsLoading: m.Loading}
}

func (m *MockAuthService) publish(state models.AuthState) {
	m.mu.Lock()
	cbs := append([]func(models.AuthState){}, m.callbacks...)
	m.mu.Unlock()
	for _, cb := range cbs {
		cb(state)
	}
}

// MockEventQueue
type MockEventQueue struct {
	Depth int
}

func (m *MockEventQueue) QueueDepth() int { return m.Depth }

// MockClickHouseConn
type MockClickHouseConn struct {
	driver.Conn
	PingErr error
	ExecErr error
	Execed  []string
}

func (m *MockClickHouseConn) Ping(ctx context.Context) error { return m.PingErr }

func (m *MockClickHouseConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	m.Execed = append(m.Execed, query)
	return m.ExecErr
}

// MockAIPinger
type MockAIPinger struct {
	Err error
}

func (m *MockAIPinger) Ping(ctx context.Context) error {
	return m.Err
}

// MockRedisPinger
type MockRedisPinger struct {
	Err error
}

func (m *MockRedisPinger) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.Err)
}

// newTestHandler wires a handler with default mocks
func newTestHandler() (*Handler, *MockAuthService) {
	authSvc := &MockAuthService{}
	h := New(Config{
		Events:      &MockEventQueue{},
		ClickHouse:  &MockClickHouseConn{},
		Redis:       &MockRedisPinger{},
		Logger:      zap.NewNop(),
		AdminToken:  "admin-secret",
		Auth:        authSvc,
		Predictions: &MockPredictionService{},
		SportsData:  &MockSportsDataService{},
		Live:        &MockLiveTracker{},
		Analytics:   &MockAnalyticsService{},
	})
	return h, authSvc
}
