package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgeting/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budgeting_test.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateUserAndDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero user id")
	}

	// Second signup with the same username must fail and leave the first
	// row untouched.
	if _, err := repo.CreateUser(ctx, "alice", "hash-b"); !errors.Is(err, core.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	u, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ID != id || u.PasswordHash != "hash-a" {
		t.Fatalf("first user row changed: %+v", u)
	}
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerOwnershipAndRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u1, err := repo.CreateUser(ctx, "u1", "h1")
	if err != nil {
		t.Fatalf("create u1: %v", err)
	}
	u2, err := repo.CreateUser(ctx, "u2", "h2")
	if err != nil {
		t.Fatalf("create u2: %v", err)
	}

	incomeID, err := repo.CreateIncome(ctx, core.IncomeEntry{
		UserID:    u1,
		Source:    "Salary",
		Amount:    core.Money{Cents: 300000},
		Frequency: "Monthly",
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}

	expenseID, err := repo.CreateExpense(ctx, core.ExpenseEntry{
		UserID:           u1,
		Category:         "Food",
		SpendingCategory: "Groceries",
		Amount:           core.Money{Cents: 5000},
		Frequency:        "Weekly",
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	incomes, err := repo.ListIncomes(ctx, u1)
	if err != nil {
		t.Fatalf("list incomes: %v", err)
	}
	if len(incomes) != 1 {
		t.Fatalf("expected 1 income, got %d", len(incomes))
	}
	got := incomes[0]
	if got.ID != incomeID || got.UserID != u1 || got.Source != "Salary" ||
		got.Amount.Cents != 300000 || got.Frequency != "Monthly" {
		t.Fatalf("income round trip mismatch: %+v", got)
	}

	expenses, err := repo.ListExpenses(ctx, u1)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}
	ge := expenses[0]
	if ge.ID != expenseID || ge.UserID != u1 || ge.Category != "Food" ||
		ge.SpendingCategory != "Groceries" || ge.Amount.Cents != 5000 || ge.Frequency != "Weekly" {
		t.Fatalf("expense round trip mismatch: %+v", ge)
	}

	// The other user must never observe u1's rows.
	otherIncomes, err := repo.ListIncomes(ctx, u2)
	if err != nil {
		t.Fatalf("list incomes u2: %v", err)
	}
	if len(otherIncomes) != 0 {
		t.Fatalf("u2 sees %d incomes of u1", len(otherIncomes))
	}
	otherExpenses, err := repo.ListExpenses(ctx, u2)
	if err != nil {
		t.Fatalf("list expenses u2: %v", err)
	}
	if len(otherExpenses) != 0 {
		t.Fatalf("u2 sees %d expenses of u1", len(otherExpenses))
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	uid, err := repo.CreateUser(ctx, "order", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sources := []string{"Salary", "Freelance", "Dividends"}
	for _, s := range sources {
		if _, err := repo.CreateIncome(ctx, core.IncomeEntry{
			UserID: uid, Source: s, Amount: core.Money{Cents: 100}, Frequency: "Monthly",
		}); err != nil {
			t.Fatalf("create income %q: %v", s, err)
		}
	}

	incomes, err := repo.ListIncomes(ctx, uid)
	if err != nil {
		t.Fatalf("list incomes: %v", err)
	}
	if len(incomes) != len(sources) {
		t.Fatalf("expected %d incomes, got %d", len(sources), len(incomes))
	}
	for i, s := range sources {
		if incomes[i].Source != s {
			t.Fatalf("position %d: got %q, want %q", i, incomes[i].Source, s)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	uid, err := repo.CreateUser(ctx, "seth", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	expires := time.Now().Add(time.Hour)
	if err := repo.CreateSession(ctx, "tok-1", uid, expires); err != nil {
		t.Fatalf("create session: %v", err)
	}

	s, err := repo.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.UserID != uid {
		t.Fatalf("session user = %d, want %d", s.UserID, uid)
	}
	if s.Expired(time.Now()) {
		t.Fatal("session should not be expired yet")
	}

	if err := repo.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.GetSession(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing token is not an error.
	if err := repo.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("delete missing session: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	uid, err := repo.CreateUser(ctx, "sweep", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now()
	if err := repo.CreateSession(ctx, "stale", uid, now.Add(-time.Minute)); err != nil {
		t.Fatalf("create stale session: %v", err)
	}
	if err := repo.CreateSession(ctx, "fresh", uid, now.Add(time.Hour)); err != nil {
		t.Fatalf("create fresh session: %v", err)
	}

	n, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired session deleted, got %d", n)
	}
	if _, err := repo.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("fresh session should survive sweep: %v", err)
	}
}
