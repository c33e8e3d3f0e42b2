package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"budgeting/internal/core"
	"budgeting/internal/storage"
)

// CookieName carries the signed session token on the client.
const CookieName = "budgeting_session"

// SessionStore is the slice of the repository the session manager needs.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetSession(ctx context.Context, token string) (core.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Manager issues and resolves sessions. The token stored server-side is
// opaque; the cookie value is "token.signature" where the signature is an
// HMAC-SHA256 over the token keyed by the server secret, so a forged or
// tampered cookie fails before any store lookup.
type Manager struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(store SessionStore, secret []byte, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl, secure: secure}
}

// Issue transitions a client from Anonymous to Authenticated(userID):
// it mints a fresh token, persists the binding and sets the cookie.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, userID int64) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(m.ttl)
	if err := m.store.CreateSession(ctx, token, userID, expires); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token + "." + m.sign(token),
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	slog.InfoContext(ctx, "Session issued", "user_id", userID, "expires_at", expires)
	return nil
}

// Resolve returns the authenticated user id for the request, or
// core.ErrUnauthenticated. Pure read: no session state is created, and an
// expired binding is simply treated as anonymous.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (int64, error) {
	token, err := m.cookieToken(r)
	if err != nil {
		return 0, err
	}

	s, err := m.store.GetSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, core.ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("look up session: %w", err)
	}

	if s.Expired(time.Now()) {
		return 0, core.ErrUnauthenticated
	}
	return s.UserID, nil
}

// Revoke transitions the client back to Anonymous: the server-side binding
// is deleted and the cookie expired. Safe to call without a session.
func (m *Manager) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.cookieToken(r)
	if err == nil {
		if derr := m.store.DeleteSession(ctx, token); derr != nil {
			return derr
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SweepExpired deletes expired session rows. Run periodically.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, time.Now())
}

// cookieToken extracts and authenticates the token from the request cookie.
func (m *Manager) cookieToken(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", core.ErrUnauthenticated
	}

	token, sig, ok := strings.Cut(c.Value, ".")
	if !ok || token == "" {
		return "", core.ErrUnauthenticated
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(token))) {
		return "", core.ErrUnauthenticated
	}
	return token, nil
}

func (m *Manager) sign(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type contextKey struct{}

// WithUserID stores the authenticated user id on the request context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID reads the authenticated user id resolved for this request.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}
