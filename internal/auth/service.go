// Package auth implements account registration and cookie sessions in front
// of the configured user and session backends.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stridelog/tracker-engine/internal/config"
	"github.com/stridelog/tracker-engine/internal/models"
	"github.com/stridelog/tracker-engine/internal/storage"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// login probe cannot tell the two apart.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrInvalidInput marks a malformed registration request.
var ErrInvalidInput = errors.New("auth: invalid input")

const minPasswordLen = 6

// SessionStore binds opaque session IDs to user IDs with a TTL.
type SessionStore interface {
	PutSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Service is the authentication layer.
type Service struct {
	users    storage.UserStore
	sessions SessionStore
	cfg      config.AuthConfig
}

// NewService wires the auth layer to its backends.
func NewService(users storage.UserStore, sessions SessionStore, cfg config.AuthConfig) *Service {
	return &Service{users: users, sessions: sessions, cfg: cfg}
}

// Register creates an account. The email is lowercased before storage so
// lookups are case-insensitive.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and opens a session. The returned session ID
// goes into the cookie.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	if err := s.sessions.PutSession(ctx, sessionID, user.ID, s.cfg.SessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, user, nil
}

// Logout drops the session. Unknown session IDs are a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

// Resolve maps a session ID to its user ID. Expired or unknown sessions
// yield an empty user ID with no error.
func (s *Service) Resolve(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	return s.sessions.GetSession(ctx, sessionID)
}

// SetCookie writes the session cookie on a successful login.
func (s *Service) SetCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on logout.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName exposes the configured cookie name for middleware.
func (s *Service) CookieName() string { return s.cfg.CookieName }
