// Package auth implements credential verification and the session
// authenticator: opaque server-side tokens carried in an HMAC-signed cookie.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"budgeting/internal/core"
	"budgeting/internal/storage"
)

// UserStore is the slice of the repository the credential service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
}

// Credentials signs users up and verifies submitted credentials. Passwords
// are stored as salted bcrypt hashes; comparison is constant-time.
type Credentials struct {
	store UserStore
}

func NewCredentials(store UserStore) *Credentials {
	return &Credentials{store: store}
}

// HashPassword derives a salted bcrypt hash from a raw password.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser validates input, hashes the password and persists the user.
// A username collision surfaces as core.ErrDuplicateUsername.
func (c *Credentials) CreateUser(ctx context.Context, username, rawPassword string) (int64, error) {
	if err := core.ValidateCredentials(username, rawPassword); err != nil {
		return 0, err
	}

	hash, err := HashPassword(rawPassword)
	if err != nil {
		return 0, err
	}

	return c.store.CreateUser(ctx, username, hash)
}

// Verify checks the submitted credentials and returns the user id on match.
// An unknown username and a wrong password are indistinguishable to the
// caller: both yield core.ErrInvalidCredentials. No side effects.
func (c *Credentials) Verify(ctx context.Context, username, rawPassword string) (int64, error) {
	u, err := c.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		// Burn a comparison so unknown usernames cost the same as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(rawPassword))
		return 0, core.ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(rawPassword)); err != nil {
		return 0, core.ErrInvalidCredentials
	}
	return u.ID, nil
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize the
// verification cost for unknown usernames.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("budgeting-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
