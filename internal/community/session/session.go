// Package session issues and verifies the signed tokens that identify a
// logged-in user, and carries the resulting Session through a request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

// Session identifies the caller of a request. It is valid while ExpiresAt is in the future.
type Session struct {
	UserID    uint
	ExpiresAt time.Time
}

func (s Session) Valid(now time.Time) bool {
	return s.UserID != 0 && now.Before(s.ExpiresAt)
}

// Manager issues and parses session tokens.
type Manager interface {
	Issue(userID uint) (token string, expiresAt time.Time, err error)
	Parse(token string) (*Session, error)
}

type manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates an HS256 token manager.
func NewManager(secret string, ttl time.Duration) Manager {
	return &manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *manager) Issue(userID uint) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *manager) Parse(tokenString string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}
	return &Session{UserID: uint(userID), ExpiresAt: claims.ExpiresAt.Time}, nil
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
