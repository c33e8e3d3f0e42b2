package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budgeting/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// SQLiteRepository persists users, sessions and ledger entries. Connection
// scoping is handled by the database/sql pool: every statement acquires a
// pooled connection and releases it on all exit paths.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies database connectivity for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser inserts a new user atomically. A username collision maps to
// core.ErrDuplicateUsername; the existing row is never touched.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return id, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user by username: %w", err)
	}
	return u, nil
}

// CreateIncome persists a new income row for the given owner.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, e core.IncomeEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, source, amount_cents, frequency) VALUES (?, ?, ?, ?)`,
		e.UserID, e.Source, e.Amount.Cents, e.Frequency)
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income insert id: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"income_id", id,
		"user_id", e.UserID,
		"source", e.Source,
		"amount_cents", e.Amount.Cents)
	return id, nil
}

// CreateExpense persists a new expense row for the given owner.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.ExpenseEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category, spending_category, amount_cents, frequency) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Category, e.SpendingCategory, e.Amount.Cents, e.Frequency)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", id,
		"user_id", e.UserID,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	return id, nil
}

// ListIncomes returns the incomes owned by userID in insertion order.
func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID int64) ([]core.IncomeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT income_id, user_id, source, amount_cents, frequency FROM incomes WHERE user_id = ? ORDER BY income_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select incomes: %w", err)
	}
	defer rows.Close()

	var entries []core.IncomeEntry
	for rows.Next() {
		var e core.IncomeEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Source, &e.Amount.Cents, &e.Frequency); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomes: %w", err)
	}
	return entries, nil
}

// ListExpenses returns the expenses owned by userID in insertion order.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_id, user_id, category, spending_category, amount_cents, frequency FROM expenses WHERE user_id = ? ORDER BY expense_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	var entries []core.ExpenseEntry
	for rows.Next() {
		var e core.ExpenseEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Category, &e.SpendingCategory, &e.Amount.Cents, &e.Frequency); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return entries, nil
}

// CreateSession stores an opaque token binding for a user.
func (r *SQLiteRepository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (core.Session, error) {
	var s core.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`,
		token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, ErrNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("select session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry and returns the
// number of rows deleted.
func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions rows affected: %w", err)
	}
	return n, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
