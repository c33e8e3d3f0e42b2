package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgeting/internal/core"
	"budgeting/internal/storage"
)

type fakeUserStore struct {
	users  map[string]core.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]core.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	if _, ok := f.users[username]; ok {
		return 0, core.ErrDuplicateUsername
	}
	f.nextID++
	f.users[username] = core.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	return f.nextID, nil
}

func (f *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	u, ok := f.users[username]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

type fakeSessionStore struct {
	sessions map[string]core.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]core.Session)}
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	f.sessions[token] = core.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeSessionStore) GetSession(ctx context.Context, token string) (core.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return core.Session{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) DeleteSession(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for tok, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, tok)
			n++
		}
	}
	return n, nil
}

func TestCredentialsSignupThenVerify(t *testing.T) {
	creds := NewCredentials(newFakeUserStore())
	ctx := context.Background()

	id, err := creds.CreateUser(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := creds.Verify(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != id {
		t.Fatalf("verify returned user %d, want %d", got, id)
	}
}

func TestCredentialsRejections(t *testing.T) {
	creds := NewCredentials(newFakeUserStore())
	ctx := context.Background()

	if _, err := creds.CreateUser(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := creds.CreateUser(ctx, "alice", "other"); !errors.Is(err, core.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := creds.Verify(ctx, "alice", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := creds.Verify(ctx, "nobody", "s3cret"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := creds.CreateUser(ctx, "", "s3cret"); err == nil {
		t.Fatal("expected error for empty username")
	}
}

func TestPasswordHashIsSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ (salt)")
	}
}

func newTestManager(store SessionStore, ttl time.Duration) *Manager {
	return NewManager(store, []byte("test-secret"), ttl, false)
}

func sessionRequest(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionIssueResolveRevoke(t *testing.T) {
	m := newTestManager(newFakeSessionStore(), time.Hour)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if err := m.Issue(ctx, rec, 42); err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := sessionRequest(rec)
	uid, err := m.Resolve(ctx, req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if uid != 42 {
		t.Fatalf("resolved user %d, want 42", uid)
	}

	// Logout destroys the binding; subsequent resolves are anonymous.
	rec2 := httptest.NewRecorder()
	if err := m.Revoke(ctx, rec2, req); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := m.Resolve(ctx, req); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after revoke, got %v", err)
	}
}

func TestSessionRejectsMissingAndTamperedCookies(t *testing.T) {
	m := newTestManager(newFakeSessionStore(), time.Hour)
	ctx := context.Background()

	// No cookie at all.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if _, err := m.Resolve(ctx, req); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	// Valid session, then flip a signature byte.
	rec := httptest.NewRecorder()
	if err := m.Issue(ctx, rec, 7); err != nil {
		t.Fatalf("issue: %v", err)
	}
	cookie := rec.Result().Cookies()[0]
	tampered := cookie.Value[:len(cookie.Value)-1]
	if strings.HasSuffix(cookie.Value, "0") {
		tampered += "1"
	} else {
		tampered += "0"
	}
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tampered})
	if _, err := m.Resolve(ctx, req); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("tampered cookie: expected ErrUnauthenticated, got %v", err)
	}

	// Cookie without a signature segment.
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "justatoken"})
	if _, err := m.Resolve(ctx, req); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("unsigned cookie: expected ErrUnauthenticated, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	store := newFakeSessionStore()
	m := newTestManager(store, -time.Minute) // already expired at issue time

	ctx := context.Background()
	rec := httptest.NewRecorder()
	if err := m.Issue(ctx, rec, 9); err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := sessionRequest(rec)
	if _, err := m.Resolve(ctx, req); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expired session: expected ErrUnauthenticated, got %v", err)
	}

	n, err := m.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("sweep removed %d sessions, want 1", n)
	}
}

func TestUserIDContextRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), 5)
	id, ok := UserID(ctx)
	if !ok || id != 5 {
		t.Fatalf("UserID = (%d, %v), want (5, true)", id, ok)
	}
	if _, ok := UserID(context.Background()); ok {
		t.Fatal("empty context must not carry a user id")
	}
}
