package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"budgetit/internal/core"
	"budgetit/internal/ledger/memory"
)

func TestExpenseService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l := newTestLedger(t, nil, pub)
	food := mustCategory(t, l, "Food")

	saved, err := l.Expenses.SaveExpense(ctx, core.Expense{
		Title:      "Market",
		Amount:     core.Money{Cents: 1234},
		Date:       core.NewDate(2024, 11, 13),
		CategoryID: food.ID,
	})
	if err != nil {
		t.Fatalf("SaveExpense() error = %v", err)
	}
	if saved.ID == 0 {
		t.Fatalf("expected an id to be assigned")
	}

	got, err := l.Expenses.GetExpense(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Title != "Market" || got.Amount.Cents != 1234 || got.Date.String() != "2024-11-13" || got.CategoryID != food.ID {
		t.Fatalf("round trip mismatch: %+v", got.Expense)
	}

	got.Expense.Title = "Supermarket"
	if _, err := l.Expenses.SaveExpense(ctx, got.Expense); err != nil {
		t.Fatalf("update error = %v", err)
	}
	all, _ := l.Expenses.ListExpenses(ctx)
	if len(all) != 1 || all[0].Title != "Supermarket" {
		t.Fatalf("expected updated expense in place, got %+v", all)
	}

	if err := l.Expenses.DeleteExpense(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if _, err := l.Expenses.GetExpense(ctx, saved.ID); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if err := l.Expenses.DeleteExpense(ctx, saved.ID); err != nil {
		t.Fatalf("deleting twice must succeed, got %v", err)
	}

	want := []core.EventType{core.EventCategoryCreated, core.EventExpenseSaved, core.EventExpenseSaved, core.EventExpenseDeleted, core.EventExpenseDeleted}
	if got := pub.types(); len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
}

func TestExpenseService_Validation(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, nil)
	food := mustCategory(t, l, "Food")
	valid := core.Expense{Title: "ok", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID}

	tests := []struct {
		name   string
		mutate func(e *core.Expense)
		want   error
	}{
		{"zero amount", func(e *core.Expense) { e.Amount.Cents = 0 }, core.ErrInvalidAmount},
		{"negative amount", func(e *core.Expense) { e.Amount.Cents = -100 }, core.ErrInvalidAmount},
		{"blank title", func(e *core.Expense) { e.Title = "   " }, core.ErrEmptyTitle},
		{"long title", func(e *core.Expense) { e.Title = strings.Repeat("a", 201) }, core.ErrTitleTooLong},
		{"no date", func(e *core.Expense) { e.Date = core.Date{} }, core.ErrInvalidDate},
		{"no category", func(e *core.Expense) { e.CategoryID = 0 }, core.ErrMissingCategory},
		{"unknown category", func(e *core.Expense) { e.CategoryID = 999 }, core.ErrUnknownCategory},
		{"update of missing expense", func(e *core.Expense) { e.ID = 999 }, core.ErrExpenseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			_, err := l.Expenses.SaveExpense(ctx, e)
			if !errors.Is(err, tt.want) {
				t.Fatalf("SaveExpense() error = %v, want %v", err, tt.want)
			}
			if core.Classify(err) != core.OutcomeValidationError {
				t.Errorf("Classify() = %v, want validation", core.Classify(err))
			}
		})
	}

	all, _ := l.Expenses.ListExpenses(ctx)
	if len(all) != 0 {
		t.Fatalf("rejected expenses must not be written, found %d", len(all))
	}
}

func TestExpenseService_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	setup := newTestLedger(t, base, nil)
	food := mustCategory(t, setup, "Food")

	l := newTestLedger(t, &faultyStore{Store: base, failOn: "InsertExpense"}, nil)
	_, err := l.Expenses.SaveExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID})
	if core.Classify(err) != core.OutcomePersistenceFailure {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if !errors.Is(err, errInjected) {
		t.Fatalf("underlying error must be reachable, got %v", err)
	}
}

func TestExpenseService_PublishFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	l := newTestLedger(t, nil, pub)
	food := mustCategory(t, l, "Food")

	if _, err := l.Expenses.SaveExpense(ctx, core.Expense{Title: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), CategoryID: food.ID}); err != nil {
		t.Fatalf("publish errors must not surface, got %v", err)
	}
}
