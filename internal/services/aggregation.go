package services

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"budgetit/internal/cache"
	"budgetit/internal/core"
	"budgetit/internal/ledger"
	applog "budgetit/internal/log"
)

var hundred = decimal.NewFromInt(100)

// Aggregate groups expenses by category and computes each category's share
// of the total. The input is trusted to be already restricted to one window.
//
// Percentages are computed on decimals and rounded to two places half away
// from zero, so their sum may drift from 100 by a few hundredths. With no
// spend the breakdown is empty.
func Aggregate(expenses []core.ExpenseDetail) (core.SpendingSummary, error) {
	byCategory := make(map[int64]*core.CategoryBreakdown)
	var total core.Money
	for _, e := range expenses {
		b, ok := byCategory[e.CategoryID]
		if !ok {
			cat := e.Category
			cat.ID = e.CategoryID
			b = &core.CategoryBreakdown{Category: cat}
			byCategory[e.CategoryID] = b
		}
		var err error
		if b.Amount, err = b.Amount.Add(e.Amount); err != nil {
			return core.SpendingSummary{}, err
		}
		if total, err = total.Add(e.Amount); err != nil {
			return core.SpendingSummary{}, err
		}
		b.ExpenseCount++
	}

	summary := core.SpendingSummary{
		Breakdown: []core.CategoryBreakdown{},
		Total:     total,
	}
	if total.Cents == 0 {
		return summary, nil
	}

	totalDec := decimal.NewFromInt(total.Cents)
	for _, b := range byCategory {
		b.Percentage = decimal.NewFromInt(b.Amount.Cents).
			Mul(hundred).
			Div(totalDec).
			Round(2).
			InexactFloat64()
		summary.Breakdown = append(summary.Breakdown, *b)
	}

	sort.Slice(summary.Breakdown, func(i, j int) bool {
		a, b := summary.Breakdown[i], summary.Breakdown[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		if a.Category.Name != b.Category.Name {
			return a.Category.Name < b.Category.Name
		}
		return a.Category.ID < b.Category.ID
	})
	return summary, nil
}

// BucketSpend spreads the expenses of frame over its chart buckets: one per
// day for weekly and monthly windows, one per month for yearly windows.
// Buckets without spend are present with a zero amount. Expenses outside
// frame are ignored.
func BucketSpend(frame core.TimeFrame, expenses []core.ExpenseDetail) ([]core.SpendPoint, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	var points []core.SpendPoint
	index := make(map[string]int)
	keyOf := func(d core.Date) string { return d.String() }
	if frame.Granularity == core.Yearly {
		keyOf = func(d core.Date) string { return core.NewDate(d.Year(), d.Month(), 1).String() }
		last := core.NewDate(frame.End.Year(), frame.End.Month(), 1)
		for m := core.NewDate(frame.Start.Year(), frame.Start.Month(), 1); !m.After(last.Time); m = (core.Date{Time: m.AddDate(0, 1, 0)}) {
			index[keyOf(m)] = len(points)
			points = append(points, core.SpendPoint{Start: m, Label: m.Format("Jan")})
		}
	} else {
		layout := "2"
		if frame.Granularity == core.Weekly {
			layout = "Mon"
		}
		for d := frame.Start; !d.After(frame.End.Time); d = d.AddDays(1) {
			index[keyOf(d)] = len(points)
			points = append(points, core.SpendPoint{Start: d, Label: d.Format(layout)})
		}
	}

	for _, e := range expenses {
		if !frame.Contains(e.Date) {
			continue
		}
		i, ok := index[keyOf(e.Date)]
		if !ok {
			continue
		}
		sum, err := points[i].Amount.Add(e.Amount)
		if err != nil {
			return nil, err
		}
		points[i].Amount = sum
	}
	return points, nil
}

// SpendingAnalyzer answers read-only questions about the ledger. Window
// summaries are cached until the next committed mutation.
type SpendingAnalyzer struct {
	store      ledger.Store
	summaries  cache.Cache[core.SpendingSummary]
	group      singleflight.Group
	generation atomic.Uint64
	now        func() time.Time
	logger     *applog.Logger
}

// AnalyzerOption customizes a SpendingAnalyzer.
type AnalyzerOption func(*SpendingAnalyzer)

// WithClock sets the source of "today" for month-to-date queries.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *SpendingAnalyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSummaryCache enables caching of window summaries.
func WithSummaryCache(c cache.Cache[core.SpendingSummary]) AnalyzerOption {
	return func(a *SpendingAnalyzer) {
		a.summaries = c
	}
}

// NewSpendingAnalyzer creates an analyzer. When notifier is not nil every
// committed mutation drops the cached summaries.
func NewSpendingAnalyzer(store ledger.Store, notifier *Notifier, opts ...AnalyzerOption) *SpendingAnalyzer {
	a := &SpendingAnalyzer{
		store:  store,
		now:    time.Now,
		logger: applog.Default().WithComponent(applog.ComponentAnalysis),
	}
	for _, opt := range opts {
		opt(a)
	}
	notifier.OnCommit(func(core.LedgerEvent) { a.Invalidate() })
	return a
}

// Invalidate drops every cached summary. Loads already in flight will not
// repopulate the cache.
func (a *SpendingAnalyzer) Invalidate() {
	a.generation.Add(1)
	if a.summaries != nil {
		a.summaries.Purge()
	}
}

// Analyze returns the category breakdown of the expenses inside frame.
func (a *SpendingAnalyzer) Analyze(ctx context.Context, frame core.TimeFrame) (core.SpendingSummary, error) {
	if err := validateFrame(frame); err != nil {
		return core.SpendingSummary{}, err
	}

	key := frame.Key()
	if a.summaries != nil {
		if s, ok := a.summaries.Get(key); ok {
			return copySummary(s), nil
		}
	}

	gen := a.generation.Load()
	// The load is shared by every caller waiting on key, so one caller
	// giving up must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := a.group.Do(fmt.Sprintf("%d|%s", gen, key), func() (interface{}, error) {
		expenses, err := a.store.ExpensesInRange(loadCtx, frame.Start, frame.End)
		if err != nil {
			return core.SpendingSummary{}, fmt.Errorf("load expenses for %s: %w", frame.Title, err)
		}
		s, err := Aggregate(expenses)
		if err != nil {
			return core.SpendingSummary{}, fmt.Errorf("aggregate %s: %w", frame.Title, err)
		}
		s.TimeFrame = frame
		if a.summaries != nil && a.generation.Load() == gen {
			a.summaries.Set(key, s)
		}
		a.logger.DebugContext(loadCtx, "Window aggregated",
			applog.FieldTimeFrame, key,
			applog.FieldCount, len(expenses),
			applog.FieldAmountCents, s.Total.Cents)
		return s, nil
	})
	if err != nil {
		return core.SpendingSummary{}, err
	}
	return copySummary(v.(core.SpendingSummary)), nil
}

// Trend returns the spend of frame bucketed for charting. See BucketSpend.
func (a *SpendingAnalyzer) Trend(ctx context.Context, frame core.TimeFrame) ([]core.SpendPoint, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}
	expenses, err := a.store.ExpensesInRange(ctx, frame.Start, frame.End)
	if err != nil {
		return nil, fmt.Errorf("load expenses for %s: %w", frame.Title, err)
	}
	points, err := BucketSpend(frame, expenses)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", frame.Title, err)
	}
	return points, nil
}

// ExpensesForCategory lists the expenses of one category inside frame,
// newest first.
func (a *SpendingAnalyzer) ExpensesForCategory(ctx context.Context, frame core.TimeFrame, categoryID int64) ([]core.ExpenseDetail, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}
	if _, err := a.store.GetCategory(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("get category %d: %w", categoryID, err)
	}
	all, err := a.store.ExpensesInRange(ctx, frame.Start, frame.End)
	if err != nil {
		return nil, fmt.Errorf("load expenses for %s: %w", frame.Title, err)
	}
	out := make([]core.ExpenseDetail, 0, len(all))
	for _, e := range all {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out, nil
}

// MonthToDate returns the expenses recorded in the current calendar month.
func (a *SpendingAnalyzer) MonthToDate(ctx context.Context) (core.MonthOverview, error) {
	frame := MonthlyFrames{}.Initial(core.DateOf(a.now()))
	expenses, err := a.store.ExpensesInRange(ctx, frame.Start, frame.End)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("load month expenses: %w", err)
	}
	overview := core.MonthOverview{
		Year:     frame.Start.Year(),
		Month:    frame.Start.Month(),
		Expenses: expenses,
	}
	for _, e := range expenses {
		if overview.Total, err = overview.Total.Add(e.Amount); err != nil {
			return core.MonthOverview{}, fmt.Errorf("month total: %w", err)
		}
	}
	return overview, nil
}

// BudgetProgress compares the latest budget with this month's spend.
// Returns core.ErrNoBudget when no budget was ever recorded.
func (a *SpendingAnalyzer) BudgetProgress(ctx context.Context) (core.BudgetProgress, error) {
	budget, err := a.store.LatestBudget(ctx)
	if err != nil {
		return core.BudgetProgress{}, fmt.Errorf("get current budget: %w", err)
	}
	month, err := a.MonthToDate(ctx)
	if err != nil {
		return core.BudgetProgress{}, err
	}

	p := core.BudgetProgress{
		Budget:     budget,
		Spent:      month.Total,
		Remaining:  budget.Amount.Sub(month.Total),
		OverBudget: month.Total.Cents > budget.Amount.Cents,
	}
	if budget.Amount.Cents > 0 {
		p.UsedPercentage = month.Total.Decimal().
			Mul(hundred).
			Div(budget.Amount.Decimal()).
			Round(2).
			InexactFloat64()
	}
	return p, nil
}

func validateFrame(frame core.TimeFrame) error {
	if frame.Start.IsZero() || frame.End.IsZero() {
		return fmt.Errorf("%w: time frame has no bounds", core.ErrValidation)
	}
	if frame.Start.After(frame.End.Time) {
		return fmt.Errorf("%w: time frame starts after it ends", core.ErrValidation)
	}
	return nil
}

func copySummary(s core.SpendingSummary) core.SpendingSummary {
	s.Breakdown = append([]core.CategoryBreakdown{}, s.Breakdown...)
	return s
}
