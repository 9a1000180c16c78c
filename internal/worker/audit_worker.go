package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"budgetit/internal/amqp"
	"budgetit/internal/cache"
	"budgetit/internal/core"
	applog "budgetit/internal/log"
	"budgetit/internal/services"
)

// Stats counts what the worker did with the messages it received.
type Stats struct {
	Processed  int64
	Duplicates int64
	Stale      int64
	Alerts     int64
}

// AuditWorker consumes committed ledger events, writes an audit trail and
// raises an alert when the month's spend goes over the current budget.
type AuditWorker struct {
	ledger *services.Ledger
	seen   cache.Cache[time.Time]
	logger *applog.Logger

	processed  atomic.Int64
	duplicates atomic.Int64
	stale      atomic.Int64
	alerts     atomic.Int64
}

// NewAuditWorker builds a worker reading from l. seen remembers handled
// message ids so redeliveries are acknowledged without reprocessing.
func NewAuditWorker(l *services.Ledger, seen cache.Cache[time.Time], logger *applog.Logger) *AuditWorker {
	if logger == nil {
		logger = applog.Default()
	}
	return &AuditWorker{
		ledger: l,
		seen:   seen,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleMessage processes one ledger event. A returned error means the
// message should be redelivered.
func (w *AuditWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if w.seen != nil {
		if at, ok := w.seen.Get(msg.ID); ok {
			w.duplicates.Add(1)
			w.logger.DebugContext(ctx, "Skipping redelivered event",
				applog.FieldEventID, msg.ID,
				"first_seen", at.Format(time.RFC3339))
			return nil
		}
	}

	// Writes happen in another process, so cached summaries are never current.
	w.ledger.Analyzer.Invalidate()

	evt := msg.Event()
	fields := applog.NewFields().
		With(applog.FieldEventID, msg.ID).
		With(applog.FieldEventType, msg.Type).
		With("entity_id", msg.EntityID)

	var err error
	switch evt.Type {
	case core.EventExpenseSaved:
		err = w.auditExpense(ctx, evt, fields)
	case core.EventExpenseDeleted:
		w.logger.InfoContext(ctx, "Expense deleted", fields.ToSlice()...)
		err = w.checkBudget(ctx)
	case core.EventCategoryCreated:
		w.logger.InfoContext(ctx, "Category created", fields.With(applog.FieldCategory, evt.Attributes["name"]).ToSlice()...)
	case core.EventCategoryDeleted:
		fields.With(applog.FieldDisposition, evt.Attributes["disposition"])
		for _, k := range []string{"target_category_id", "affected_expenses"} {
			if v, ok := evt.Attributes[k]; ok {
				fields.With(k, v)
			}
		}
		w.logger.InfoContext(ctx, "Category deleted", fields.ToSlice()...)
		err = w.checkBudget(ctx)
	case core.EventBudgetSaved:
		w.logger.InfoContext(ctx, "Budget saved",
			fields.With(applog.FieldCurrency, evt.Attributes["currency"]).
				With("amount", evt.Attributes["amount"]).
				With("seeded", evt.Attributes["seeded"]).
				ToSlice()...)
		err = w.checkBudget(ctx)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", fields.ToSlice()...)
	}

	if err != nil {
		if !core.Classify(err).Retryable() {
			w.logger.WarnContext(ctx, "Dropping event that cannot be processed",
				fields.WithError(err).ToSlice()...)
			w.remember(msg.ID)
			return nil
		}
		return fmt.Errorf("handle %s event: %w", msg.Type, err)
	}

	w.processed.Add(1)
	w.remember(msg.ID)
	return nil
}

func (w *AuditWorker) auditExpense(ctx context.Context, evt core.LedgerEvent, fields applog.LogFields) error {
	detail, err := w.ledger.Expenses.GetExpense(ctx, evt.EntityID)
	if errors.Is(err, core.ErrExpenseNotFound) {
		w.stale.Add(1)
		w.logger.InfoContext(ctx, "Expense no longer exists", fields.ToSlice()...)
		return nil
	}
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Expense saved",
		fields.WithExpense(detail.Expense).
			With(applog.FieldCategory, detail.Category.Name).
			ToSlice()...)
	return w.checkBudget(ctx)
}

func (w *AuditWorker) checkBudget(ctx context.Context) error {
	p, err := w.ledger.Analyzer.BudgetProgress(ctx)
	if errors.Is(err, core.ErrNoBudget) {
		return nil
	}
	if err != nil {
		return err
	}

	attrs := []any{
		applog.FieldCurrency, string(p.Budget.Currency),
		"budget", p.Budget.Amount.String(),
		"spent", p.Spent.String(),
		"used_percentage", p.UsedPercentage,
	}
	if p.OverBudget {
		w.alerts.Add(1)
		w.logger.WarnContext(ctx, "Monthly budget exceeded", attrs...)
		return nil
	}
	w.logger.DebugContext(ctx, "Budget within limits", attrs...)
	return nil
}

func (w *AuditWorker) remember(id string) {
	if w.seen != nil {
		w.seen.Set(id, time.Now())
	}
}

// StartupCheck logs the current month and budget position so an operator
// sees the ledger state the worker starts from.
func (w *AuditWorker) StartupCheck(ctx context.Context) error {
	month, err := w.ledger.Analyzer.MonthToDate(ctx)
	if err != nil {
		return fmt.Errorf("load current month: %w", err)
	}
	w.logger.InfoContext(ctx, "Current month",
		"year", month.Year,
		"month", month.Month,
		applog.FieldCount, len(month.Expenses),
		"total", month.Total.String())

	if err := w.checkBudget(ctx); err != nil {
		return fmt.Errorf("check budget: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the worker counters.
func (w *AuditWorker) Stats() Stats {
	return Stats{
		Processed:  w.processed.Load(),
		Duplicates: w.duplicates.Load(),
		Stale:      w.stale.Load(),
		Alerts:     w.alerts.Load(),
	}
}
