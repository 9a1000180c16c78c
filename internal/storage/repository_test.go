package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func insertCategory(t *testing.T, repo *SQLiteRepository, name string) core.Category {
	t.Helper()
	c, err := repo.InsertCategory(context.Background(), core.Category{Name: name, Icon: core.IconOther, Color: core.ColorGray})
	require.NoError(t, err)
	return c
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Reopening must not fail on an already migrated schema
	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}

func TestSQLiteExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	food := insertCategory(t, repo, "Food")

	saved, err := repo.InsertExpense(ctx, core.Expense{
		Title:      "Groceries",
		Amount:     core.Money{Cents: 4250},
		Date:       core.NewDate(2024, 11, 13),
		CategoryID: food.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	got, err := repo.GetExpense(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, int64(4250), got.Amount.Cents)
	assert.Equal(t, "2024-11-13", got.Date.String())
	assert.Equal(t, food.ID, got.CategoryID)
	assert.Equal(t, "Food", got.Category.Name)

	saved.Title = "Market"
	_, err = repo.UpdateExpense(ctx, saved)
	require.NoError(t, err)
	got, err = repo.GetExpense(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Market", got.Title)

	require.NoError(t, repo.DeleteExpenseByID(ctx, saved.ID))
	_, err = repo.GetExpense(ctx, saved.ID)
	assert.ErrorIs(t, err, core.ErrExpenseNotFound)
	assert.NoError(t, repo.DeleteExpenseByID(ctx, saved.ID), "deleting twice is not an error")
}

func TestSQLiteExpensesInRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	food := insertCategory(t, repo, "Food")

	for _, d := range []core.Date{core.NewDate(2024, 10, 31), core.NewDate(2024, 11, 1), core.NewDate(2024, 11, 30), core.NewDate(2024, 12, 1)} {
		_, err := repo.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 100}, Date: d, CategoryID: food.ID})
		require.NoError(t, err)
	}

	got, err := repo.ExpensesInRange(ctx, core.NewDate(2024, 11, 1), core.NewDate(2024, 11, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-11-30", got[0].Date.String())
	assert.Equal(t, "2024-11-01", got[1].Date.String())
}

func TestSQLiteForeignKeyBlocksReferencedCategoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	food := insertCategory(t, repo, "Food")
	_, err := repo.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID})
	require.NoError(t, err)

	err = repo.DeleteCategoryByID(ctx, food.ID)
	assert.ErrorIs(t, err, core.ErrPersistence)

	_, err = repo.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1), CategoryID: 9999})
	assert.ErrorIs(t, err, core.ErrPersistence)

	assert.ErrorIs(t, repo.DeleteCategoryByID(ctx, 9999), core.ErrCategoryNotFound)
}

func TestSQLiteWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	a := insertCategory(t, repo, "A")
	b := insertCategory(t, repo, "B")
	_, err := repo.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1), CategoryID: a.ID})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.WithinTx(ctx, func(tx ledger.Tx) error {
		moved, err := tx.ReassignExpenses(ctx, a.ID, b.ID)
		if err != nil {
			return err
		}
		if moved != 1 {
			t.Errorf("expected 1 moved row, got %d", moved)
		}
		if err := tx.DeleteCategoryByID(ctx, a.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetCategory(ctx, a.ID)
	require.NoError(t, err, "category must survive the rollback")
	n, err := repo.CountExpensesByCategory(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteBudgetsAndCategories(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.LatestBudget(ctx)
	assert.ErrorIs(t, err, core.ErrNoBudget)

	t0 := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	_, err = repo.InsertBudget(ctx, core.Budget{Currency: core.EUR, Amount: core.Money{Cents: 50000}, Timestamp: t0})
	require.NoError(t, err)
	_, err = repo.InsertBudget(ctx, core.Budget{Currency: core.GBP, Amount: core.Money{Cents: 0}, Timestamp: t0.Add(time.Minute)})
	require.NoError(t, err)

	latest, err := repo.LatestBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.GBP, latest.Currency)
	assert.True(t, latest.Timestamp.Equal(t0.Add(time.Minute)))

	history, err := repo.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	seeded, err := repo.InsertCategories(ctx, core.DefaultCategories())
	require.NoError(t, err)
	assert.Len(t, seeded, 10)

	n, err := repo.CategoryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	list, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Education", list[0].Name)
}
