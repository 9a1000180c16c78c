package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
)

func seedCategory(t *testing.T, s *Store, name string) core.Category {
	t.Helper()
	c, err := s.InsertCategory(context.Background(), core.Category{Name: name, Icon: core.IconOther, Color: core.ColorGray})
	if err != nil {
		t.Fatalf("insert category %s: %v", name, err)
	}
	return c
}

func TestMemoryStoreExpensesOrderedByDate(t *testing.T) {
	ctx := context.Background()
	s := New()
	food := seedCategory(t, s, "Food")

	for _, d := range []core.Date{core.NewDate(2024, 11, 1), core.NewDate(2024, 11, 20), core.NewDate(2024, 10, 31)} {
		if _, err := s.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 100}, Date: d, CategoryID: food.ID}); err != nil {
			t.Fatalf("insert expense: %v", err)
		}
	}

	all, err := s.ListExpenses(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("unexpected list: %v err=%v", all, err)
	}
	if all[0].Date.String() != "2024-11-20" || all[2].Date.String() != "2024-10-31" {
		t.Fatalf("expected newest first, got %s..%s", all[0].Date, all[2].Date)
	}
	if all[0].Category.Name != "Food" {
		t.Fatalf("expected joined category, got %+v", all[0].Category)
	}

	nov, _ := s.ExpensesInRange(ctx, core.NewDate(2024, 11, 1), core.NewDate(2024, 11, 30))
	if len(nov) != 2 {
		t.Fatalf("expected 2 expenses in November, got %d", len(nov))
	}
}

func TestMemoryStoreRollsBackFailedTx(t *testing.T) {
	ctx := context.Background()
	s := New()
	food := seedCategory(t, s, "Food")

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID}); err != nil {
			return err
		}
		if _, err := tx.InsertCategory(ctx, core.Category{Name: "Other", Icon: core.IconOther, Color: core.ColorGray}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if n, _ := s.CategoryCount(ctx); n != 1 {
		t.Fatalf("expected rollback to keep 1 category, got %d", n)
	}
	if all, _ := s.ListExpenses(ctx); len(all) != 0 {
		t.Fatalf("expected rollback to drop the expense, got %d", len(all))
	}
}

func TestMemoryStoreRestrictsReferencedCategoryDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	food := seedCategory(t, s, "Food")
	if _, err := s.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID}); err != nil {
		t.Fatalf("insert expense: %v", err)
	}

	err := s.DeleteCategoryByID(ctx, food.ID)
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err := s.DeleteCategoryByID(ctx, 999); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStoreReassignAndCascade(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedCategory(t, s, "A")
	b := seedCategory(t, s, "B")
	for i := 0; i < 3; i++ {
		if _, err := s.InsertExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: a.ID}); err != nil {
			t.Fatalf("insert expense: %v", err)
		}
	}

	n, err := s.ReassignExpenses(ctx, a.ID, b.ID)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 moved, got %d err=%v", n, err)
	}
	if c, _ := s.CountExpensesByCategory(ctx, b.ID); c != 3 {
		t.Fatalf("expected 3 expenses on B, got %d", c)
	}

	n, err = s.DeleteExpensesByCategory(ctx, b.ID)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted, got %d err=%v", n, err)
	}
}

func TestMemoryStoreBudgetHistory(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.LatestBudget(ctx); !errors.Is(err, core.ErrNoBudget) {
		t.Fatalf("expected ErrNoBudget, got %v", err)
	}

	t0 := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)
	_, _ = s.InsertBudget(ctx, core.Budget{Currency: core.EUR, Amount: core.Money{Cents: 100}, Timestamp: t0})
	_, _ = s.InsertBudget(ctx, core.Budget{Currency: core.USD, Amount: core.Money{Cents: 200}, Timestamp: t0.Add(time.Hour)})

	latest, err := s.LatestBudget(ctx)
	if err != nil || latest.Currency != core.USD {
		t.Fatalf("expected latest USD budget, got %+v err=%v", latest, err)
	}
	hist, _ := s.ListBudgets(ctx)
	if len(hist) != 2 || hist[1].Currency != core.EUR {
		t.Fatalf("unexpected history %+v", hist)
	}
}

func TestMemoryStoreUpdateMissingExpense(t *testing.T) {
	s := New()
	food := seedCategory(t, s, "Food")
	_, err := s.UpdateExpense(context.Background(), core.Expense{ID: 42, Title: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID})
	if !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if err := s.DeleteExpenseByID(context.Background(), 42); err != nil {
		t.Fatalf("deleting a missing expense must succeed, got %v", err)
	}
}
