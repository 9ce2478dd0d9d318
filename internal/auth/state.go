package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/models"
)

// StateWatcher fans auth state changes out to subscribers. It starts in
// the loading state until MarkReady is called.
type StateWatcher struct {
	mu     sync.RWMutex
	state  models.AuthState
	nextID int
	subs   map[int]func(models.AuthState)
}

func NewStateWatcher() *StateWatcher {
	return &StateWatcher{
		state: models.AuthState{IsLoading: true},
		subs:  make(map[int]func(models.AuthState)),
	}
}

// OnAuthStateChanged registers cb and immediately delivers the current
// state. The returned func removes the subscription and is safe to call
// more than once.
func (w *StateWatcher) OnAuthStateChanged(cb func(models.AuthState)) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = cb
	current := w.state
	w.mu.Unlock()

	cb(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

// Publish records state and notifies every subscriber synchronously
func (w *StateWatcher) Publish(state models.AuthState) {
	w.mu.Lock()
	w.state = state
	subs := make([]func(models.AuthState), 0, len(w.subs))
	for _, cb := range w.subs {
		subs = append(subs, cb)
	}
	w.mu.Unlock()

	for _, cb := range subs {
		cb(state)
	}
}

// MarkReady leaves the loading state
func (w *StateWatcher) MarkReady() {
	w.Publish(models.AuthState{IsLoading: false})
}

func (w *StateWatcher) Current() models.AuthState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *StateWatcher) Subscribers() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subs)
}

// ErrInvalidCredentials is returned when a login carries no credential or a wrong one
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credential derives the login credential for userID. Operators hand it
// out alongside the user id.
func Credential(loginSecret, userID string) string {
	mac := hmac.New(sha256.New, []byte(loginSecret))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Service is the login/logout surface used by the HTTP layer
type Service struct {
	issuer      *Issuer
	watcher     *StateWatcher
	loginSecret string
	logger      *zap.SugaredLogger
}

func NewService(issuer *Issuer, watcher *StateWatcher, loginSecret string, logger *zap.Logger) *Service {
	return &Service{issuer: issuer, watcher: watcher, loginSecret: loginSecret, logger: logger.Sugar()}
}

// Login checks the credential, issues a token for the user and announces the sign-in
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if s.loginSecret == "" || req.Credential == "" ||
		!hmac.Equal([]byte(req.Credential), []byte(Credential(s.loginSecret, req.UserID))) {
		s.logger.Warnw("Rejected sign-in", "user", req.UserID)
		return nil, ErrInvalidCredentials
	}

	user := models.User{ID: req.UserID, Email: req.Email, DisplayName: req.DisplayName}
	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Infow("User signed in", "user", user.ID)
	s.watcher.Publish(models.AuthState{User: &user})

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.issuer.TTL().Seconds()),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		User:        user,
	}, nil
}

// Logout revokes the token and announces the sign-out
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.issuer.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := s.issuer.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.Infow("User signed out", "user", claims.Subject)
	s.watcher.Publish(models.AuthState{Previous: claims.User()})
	return nil
}

// Authenticate resolves a bearer token to a user
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.issuer.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims.User(), nil
}

func (s *Service) OnAuthStateChanged(cb func(models.AuthState)) func() {
	return s.watcher.OnAuthStateChanged(cb)
}

func (s *Service) State() models.AuthState {
	return s.watcher.Current()
}
