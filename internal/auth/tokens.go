// Package auth issues and verifies bearer tokens and tracks the
// application's auth state for subscribers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matchoracle/prediction-api/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

const issuerName = "match-oracle"

// Claims carried by every access token
type Claims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// User returns the principal the claims describe
func (c *Claims) User() *models.User {
	return &models.User{ID: c.Subject, Email: c.Email, DisplayName: c.DisplayName}
}

// RevocationStore remembers logged-out token ids until they expire
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationStore keeps the denylist in redis with per-key TTLs
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Issuer signs HS256 access tokens
type Issuer struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, revoked RevocationStore) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// TTL is the lifetime of freshly issued tokens
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for user
func (i *Issuer) Issue(user models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses the token and checks signature, expiry and the denylist
func (i *Issuer) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalidToken)
	}

	if i.revoked != nil {
		revoked, err := i.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke denylists the token until its natural expiry
func (i *Issuer) Revoke(ctx context.Context, claims *Claims) error {
	if i.revoked == nil {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(i.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return i.revoked.Revoke(ctx, claims.ID, ttl)
}

// BearerToken extracts the token from the Authorization header, falling
// back to the access_token query parameter used by websocket clients.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

type contextKey string

const userKey contextKey = "user"

// WithUser stores the authenticated user on the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}
