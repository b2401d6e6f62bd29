// Package auth gates access to the dashboard. Accounts live in the users table
// with bcrypt password hashes; authenticated sessions travel as HS256 JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is how long a session stays valid when no TTL is configured.
const DefaultTTL = 24 * time.Hour

const issuer = "nestegg"

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", common.ErrUnauthorized)
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// MinPasswordLength is the shortest password HashPassword accepts.
const MinPasswordLength = 8

// Session is an authenticated login. It is handed to UI layers and never stored globally.
type Session struct {
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	ID        uuid.UUID `json:"id"`
}

// Valid reports whether the session has not yet expired at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// Gate checks credentials against stored users and mints session tokens.
type Gate struct {
	users  service.UserStore
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// Option configures a Gate.
type Option func(*Gate)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a gate over users. The secret signs session tokens and must not be empty.
func NewGate(users service.UserStore, secret []byte, opts ...Option) (*Gate, error) {
	if users == nil {
		return nil, fmt.Errorf("%w: user store is required", common.ErrMissingConfig)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: token secret is required", common.ErrMissingConfig)
	}

	g := &Gate{
		users:  users,
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NewUser builds a user record with a hashed password.
func NewUser(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &model.User{Username: username, PasswordHash: hash}, nil
}

// Login checks the credentials and opens a session.
func (g *Gate) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := g.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			slog.Debug("Login for unknown user", "username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Debug("Login with wrong password", "username", username)
		return nil, ErrInvalidCredentials
	}

	now := g.now()
	session := &Session{
		ID:        uuid.New(),
		Username:  user.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.ttl),
	}
	slog.Info("User logged in", "username", user.Username, "session", session.ID)
	return session, nil
}

// IssueToken encodes the session as a signed JWT.
func (g *Gate) IssueToken(session *Session) (string, error) {
	if session == nil {
		return "", fmt.Errorf("%w: session", common.ErrInvalidInput)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        session.ID.String(),
		Subject:   session.Username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})

	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token produced by IssueToken.
func (g *Gate) Verify(tokenString string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &Session{
		ID:        id,
		Username:  claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}
