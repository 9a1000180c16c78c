package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
	applog "budgetit/internal/log"
)

// ExpenseService validates and persists expenses, then announces the change.
type ExpenseService struct {
	store    ledger.Store
	notifier *Notifier
	log      *applog.StructuredLogger
}

func NewExpenseService(store ledger.Store, notifier *Notifier) *ExpenseService {
	return &ExpenseService{
		store:    store,
		notifier: notifier,
		log:      applog.NewStructuredLogger(applog.Default().WithComponent(applog.ComponentExpense)),
	}
}

// SaveExpense inserts e when its ID is zero and updates it otherwise. The
// referenced category must exist. Nothing is written when validation fails.
func (s *ExpenseService) SaveExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	op := applog.OpCreate
	if e.ID != 0 {
		op = applog.OpUpdate
	}

	if err := e.Validate(); err != nil {
		s.log.LogOutcome(ctx, "Expense rejected", op, err, applog.NewFields().WithExpense(e))
		return core.Expense{}, err
	}

	var saved core.Expense
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.GetCategory(ctx, e.CategoryID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %d", core.ErrUnknownCategory, e.CategoryID)
			}
			return err
		}
		var err error
		if e.ID == 0 {
			saved, err = tx.InsertExpense(ctx, e)
		} else {
			saved, err = tx.UpdateExpense(ctx, e)
		}
		return err
	})

	s.log.LogOutcome(ctx, "Expense saved", op, err, applog.NewFields().WithExpense(saved))
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.notifier.Committed(ctx, core.NewLedgerEvent(core.EventExpenseSaved, saved.ID, map[string]string{
		"title":        saved.Title,
		"amount_cents": strconv.FormatInt(saved.Amount.Cents, 10),
		"date":         saved.Date.String(),
		"category_id":  strconv.FormatInt(saved.CategoryID, 10),
	}))
	return saved, nil
}

// DeleteExpense removes an expense. Deleting an unknown id is not an error.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	err := s.store.DeleteExpenseByID(ctx, id)
	s.log.LogOutcome(ctx, "Expense deleted", applog.OpDelete, err, applog.NewFields().With(applog.FieldExpenseID, id))
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.notifier.Committed(ctx, core.NewLedgerEvent(core.EventExpenseDeleted, id, nil))
	return nil
}

// GetExpense returns one expense with its category.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.ExpenseDetail, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.ExpenseDetail{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListExpenses returns every expense, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.ExpenseDetail, error) {
	es, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return es, nil
}
