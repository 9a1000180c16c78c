package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
	"budgetit/internal/ledger/memory"
)

var errInjected = errors.New("injected store failure")

// faultyStore fails the named transactional operation with errInjected,
// wrapped as a persistence error the way a real store would report it.
type faultyStore struct {
	ledger.Store
	failOn string
}

func (f *faultyStore) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return f.Store.WithinTx(ctx, func(tx ledger.Tx) error {
		return fn(&faultyTx{Tx: tx, failOn: f.failOn})
	})
}

type faultyTx struct {
	ledger.Tx
	failOn string
}

func (f *faultyTx) fail(op string) error {
	if f.failOn == op {
		return core.WrapStoreError(op, errInjected)
	}
	return nil
}

func (f *faultyTx) DeleteCategoryByID(ctx context.Context, id int64) error {
	if err := f.fail("DeleteCategoryByID"); err != nil {
		return err
	}
	return f.Tx.DeleteCategoryByID(ctx, id)
}

func (f *faultyTx) InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := f.fail("InsertBudget"); err != nil {
		return core.Budget{}, err
	}
	return f.Tx.InsertBudget(ctx, b)
}

func (f *faultyTx) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := f.fail("InsertExpense"); err != nil {
		return core.Expense{}, err
	}
	return f.Tx.InsertExpense(ctx, e)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []core.LedgerEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, evt core.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func (r *recordingPublisher) types() []core.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

var testNow = time.Date(2024, 11, 13, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestLedger(t *testing.T, store ledger.Store, pub EventPublisher) *Ledger {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	l := NewLedger(store, Options{Publisher: pub, Now: fixedClock})
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func mustCategory(t *testing.T, l *Ledger, name string) core.Category {
	t.Helper()
	c, err := l.Categories.CreateCategory(context.Background(), name, core.IconOther, core.ColorGray)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func mustExpense(t *testing.T, l *Ledger, categoryID, cents int64, date core.Date) core.Expense {
	t.Helper()
	e, err := l.Expenses.SaveExpense(context.Background(), core.Expense{
		Title:      "expense",
		Amount:     core.Money{Cents: cents},
		Date:       date,
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("save expense: %v", err)
	}
	return e
}
