package services

import (
	"time"

	"budgetit/internal/cache"
	"budgetit/internal/core"
	"budgetit/internal/ledger"
)

// Options configures a Ledger.
type Options struct {
	// Publisher receives an event for every committed mutation. Optional.
	Publisher EventPublisher
	// SummaryCache caches window summaries. Optional.
	SummaryCache cache.Cache[core.SpendingSummary]
	// Now is the clock used for budget timestamps and "today". Defaults to time.Now.
	Now func() time.Time
}

// Ledger wires the services around one injected store.
type Ledger struct {
	Budgets    *BudgetService
	Categories *CategoryService
	Expenses   *ExpenseService
	Analyzer   *SpendingAnalyzer

	store    ledger.Store
	notifier *Notifier
}

func NewLedger(store ledger.Store, opts Options) *Ledger {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := NewNotifier(opts.Publisher)

	return &Ledger{
		Budgets:    NewBudgetService(store, notifier, now),
		Categories: NewCategoryService(store, notifier),
		Expenses:   NewExpenseService(store, notifier),
		Analyzer:   NewSpendingAnalyzer(store, notifier, WithClock(now), WithSummaryCache(opts.SummaryCache)),
		store:      store,
		notifier:   notifier,
	}
}

// Notifier exposes the commit notifier so callers can add hooks.
func (l *Ledger) Notifier() *Notifier {
	return l.notifier
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
