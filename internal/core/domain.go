package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// User is an account holder. Rows are immutable after signup.
	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	// IncomeEntry is an income source owned by exactly one user.
	IncomeEntry struct {
		ID        int64
		UserID    int64
		Source    string
		Amount    Money
		Frequency string
	}

	// ExpenseEntry is an expense owned by exactly one user.
	ExpenseEntry struct {
		ID               int64
		UserID           int64
		Category         string
		SpendingCategory string
		Amount           Money
		Frequency        string
	}

	// Session binds an opaque server-side token to a user identity.
	Session struct {
		Token     string
		UserID    int64
		ExpiresAt time.Time
		CreatedAt time.Time
	}
)

var (
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUnauthenticated       = errors.New("not authenticated")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrEmptyUsername         = errors.New("empty username")
	ErrEmptyPassword         = errors.New("empty password")
	ErrEmptySource           = errors.New("empty income source")
	ErrEmptyCategory         = errors.New("empty category")
	ErrEmptySpendingCategory = errors.New("empty spending category")
	ErrEmptyFrequency        = errors.New("empty frequency")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateCredentials checks signup input before it reaches the store.
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if len(username) > 100 {
		return errors.New("username too long (max 100 characters)")
	}
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}

func (e IncomeEntry) Validate() error {
	if strings.TrimSpace(e.Source) == "" {
		return ErrEmptySource
	}
	if len(e.Source) > 200 {
		return errors.New("income source too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Frequency) == "" {
		return ErrEmptyFrequency
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > 200 {
		return errors.New("category too long (max 200 characters)")
	}
	if strings.TrimSpace(e.SpendingCategory) == "" {
		return ErrEmptySpendingCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Frequency) == "" {
		return ErrEmptyFrequency
	}
	return nil
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
