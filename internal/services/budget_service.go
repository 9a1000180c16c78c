package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
	applog "budgetit/internal/log"
)

// BudgetService records budgets. The budget ledger is append-only: saving
// adds a new entry and the newest one is the current budget.
type BudgetService struct {
	store    ledger.Store
	notifier *Notifier
	now      func() time.Time
	log      *applog.StructuredLogger
}

func NewBudgetService(store ledger.Store, notifier *Notifier, now func() time.Time) *BudgetService {
	if now == nil {
		now = time.Now
	}
	return &BudgetService{
		store:    store,
		notifier: notifier,
		now:      now,
		log:      applog.NewStructuredLogger(applog.Default().WithComponent(applog.ComponentBudget)),
	}
}

// SaveBudget appends a budget entry. The very first budget on a ledger with
// no categories also seeds the default categories, in the same transaction.
func (s *BudgetService) SaveBudget(ctx context.Context, currency core.Currency, amount core.Money) (core.Budget, error) {
	b := core.Budget{Currency: currency, Amount: amount, Timestamp: s.now().UTC()}
	if err := b.Validate(); err != nil {
		s.log.LogOutcome(ctx, "Budget rejected", applog.OpCreate, err, applog.NewFields().
			With(applog.FieldCurrency, string(currency)).
			With(applog.FieldAmountCents, amount.Cents))
		return core.Budget{}, err
	}

	var (
		saved  core.Budget
		seeded int
	)
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		_, err := tx.LatestBudget(ctx)
		firstBudget := errors.Is(err, core.ErrNoBudget)
		if err != nil && !firstBudget {
			return err
		}

		if firstBudget {
			n, err := tx.CategoryCount(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				cs, err := tx.InsertCategories(ctx, core.DefaultCategories())
				if err != nil {
					return err
				}
				seeded = len(cs)
			}
		}

		saved, err = tx.InsertBudget(ctx, b)
		return err
	})

	s.log.LogOutcome(ctx, "Budget saved", applog.OpCreate, err, applog.NewFields().
		With(applog.FieldBudgetID, saved.ID).
		With(applog.FieldCurrency, string(currency)).
		With(applog.FieldAmountCents, amount.Cents))
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	if seeded > 0 {
		s.log.Logger().InfoContext(ctx, "Default categories seeded",
			applog.FieldOperation, applog.OpSeed,
			applog.FieldCount, seeded)
	}

	s.notifier.Committed(ctx, core.NewLedgerEvent(core.EventBudgetSaved, saved.ID, map[string]string{
		"currency": string(saved.Currency),
		"amount":   saved.Amount.String(),
		"seeded":   fmt.Sprint(seeded),
	}))
	return saved, nil
}

// CurrentBudget returns the newest budget or core.ErrNoBudget.
func (s *BudgetService) CurrentBudget(ctx context.Context) (core.Budget, error) {
	b, err := s.store.LatestBudget(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get current budget: %w", err)
	}
	return b, nil
}

// BudgetHistory returns every budget entry, newest first.
func (s *BudgetService) BudgetHistory(ctx context.Context) ([]core.Budget, error) {
	bs, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return bs, nil
}
