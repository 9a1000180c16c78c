package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetit/internal/core"
	"budgetit/internal/ledger"

	_ "modernc.org/sqlite"
)

const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLiteRepository is the ledger.Store backed by a SQLite database file.
// Calls made on it directly run outside any explicit transaction.
type SQLiteRepository struct {
	ledgerQueries
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + dsnPragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection keeps transactions from
	// tripping over each other with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite ledger opened", "path", dbPath)

	return &SQLiteRepository{
		ledgerQueries: ledgerQueries{q: New(db)},
		db:            db,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithinTx implements ledger.Store.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapStoreError("begin transaction", err)
	}

	if err := fn(ledgerQueries{q: r.q.WithTx(sqlTx)}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return core.WrapStoreError("commit transaction", err)
	}
	return nil
}

// InsertCategories runs the batch in its own transaction so that a failure
// leaves no partial set behind.
func (r *SQLiteRepository) InsertCategories(ctx context.Context, cs []core.Category) (out []core.Category, err error) {
	err = r.WithinTx(ctx, func(tx ledger.Tx) error {
		out, err = tx.InsertCategories(ctx, cs)
		return err
	})
	return out, err
}

// ledgerQueries maps the generated queries onto ledger.Tx.
type ledgerQueries struct {
	q *Queries
}

func (l ledgerQueries) InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row, err := l.q.CreateBudget(ctx, CreateBudgetParams{
		Currency:    string(b.Currency),
		AmountCents: b.Amount.Cents,
		TimestampMs: b.Timestamp.UnixMilli(),
	})
	if err != nil {
		return core.Budget{}, core.WrapStoreError("insert budget", err)
	}
	return toBudget(row), nil
}

func (l ledgerQueries) LatestBudget(ctx context.Context) (core.Budget, error) {
	row, err := l.q.GetLatestBudget(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNoBudget
	}
	if err != nil {
		return core.Budget{}, core.WrapStoreError("get latest budget", err)
	}
	return toBudget(row), nil
}

func (l ledgerQueries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := l.q.ListBudgets(ctx)
	if err != nil {
		return nil, core.WrapStoreError("list budgets", err)
	}
	out := make([]core.Budget, len(rows))
	for i, row := range rows {
		out[i] = toBudget(row)
	}
	return out, nil
}

func (l ledgerQueries) CategoryCount(ctx context.Context) (int64, error) {
	n, err := l.q.CountCategories(ctx)
	if err != nil {
		return 0, core.WrapStoreError("count categories", err)
	}
	return n, nil
}

func (l ledgerQueries) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := l.q.CreateCategory(ctx, CreateCategoryParams{
		Name:  c.Name,
		Icon:  string(c.Icon),
		Color: string(c.Color),
	})
	if err != nil {
		return core.Category{}, core.WrapStoreError("insert category", err)
	}
	return toCategory(row), nil
}

func (l ledgerQueries) InsertCategories(ctx context.Context, cs []core.Category) ([]core.Category, error) {
	out := make([]core.Category, 0, len(cs))
	for _, c := range cs {
		inserted, err := l.InsertCategory(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, inserted)
	}
	return out, nil
}

func (l ledgerQueries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := l.q.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, core.WrapStoreError("get category", err)
	}
	return toCategory(row), nil
}

func (l ledgerQueries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := l.q.ListCategories(ctx)
	if err != nil {
		return nil, core.WrapStoreError("list categories", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = toCategory(row)
	}
	return out, nil
}

func (l ledgerQueries) DeleteCategoryByID(ctx context.Context, id int64) error {
	n, err := l.q.DeleteCategory(ctx, id)
	if err != nil {
		return core.WrapStoreError("delete category", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (l ledgerQueries) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row, err := l.q.CreateExpense(ctx, CreateExpenseParams{
		Title:       e.Title,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.String(),
		CategoryID:  e.CategoryID,
	})
	if err != nil {
		return core.Expense{}, core.WrapStoreError("insert expense", err)
	}
	return toExpense(row)
}

func (l ledgerQueries) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row, err := l.q.UpdateExpense(ctx, UpdateExpenseParams{
		Title:       e.Title,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.String(),
		CategoryID:  e.CategoryID,
		ID:          e.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, core.WrapStoreError("update expense", err)
	}
	return toExpense(row)
}

func (l ledgerQueries) GetExpense(ctx context.Context, id int64) (core.ExpenseDetail, error) {
	row, err := l.q.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseDetail{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.ExpenseDetail{}, core.WrapStoreError("get expense", err)
	}
	return toExpenseDetail(row)
}

func (l ledgerQueries) ListExpenses(ctx context.Context) ([]core.ExpenseDetail, error) {
	rows, err := l.q.ListExpenses(ctx)
	if err != nil {
		return nil, core.WrapStoreError("list expenses", err)
	}
	return toExpenseDetails(rows)
}

func (l ledgerQueries) ExpensesInRange(ctx context.Context, start, end core.Date) ([]core.ExpenseDetail, error) {
	start, end, ok := core.ClampToStorable(start, end)
	if !ok {
		return []core.ExpenseDetail{}, nil
	}
	rows, err := l.q.GetExpensesInRange(ctx, GetExpensesInRangeParams{
		StartDate: start.String(),
		EndDate:   end.String(),
	})
	if err != nil {
		return nil, core.WrapStoreError("get expenses in range", err)
	}
	return toExpenseDetails(rows)
}

func (l ledgerQueries) CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	n, err := l.q.CountExpensesByCategory(ctx, categoryID)
	if err != nil {
		return 0, core.WrapStoreError("count expenses by category", err)
	}
	return n, nil
}

func (l ledgerQueries) ReassignExpenses(ctx context.Context, from, to int64) (int64, error) {
	n, err := l.q.ReassignExpenses(ctx, ReassignExpensesParams{ToCategoryID: to, FromCategoryID: from})
	if err != nil {
		return 0, core.WrapStoreError("reassign expenses", err)
	}
	return n, nil
}

func (l ledgerQueries) DeleteExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	n, err := l.q.DeleteExpensesByCategory(ctx, categoryID)
	if err != nil {
		return 0, core.WrapStoreError("delete expenses by category", err)
	}
	return n, nil
}

func (l ledgerQueries) DeleteExpenseByID(ctx context.Context, id int64) error {
	if err := l.q.DeleteExpense(ctx, id); err != nil {
		return core.WrapStoreError("delete expense", err)
	}
	return nil
}

func toBudget(row Budget) core.Budget {
	return core.Budget{
		ID:        row.ID,
		Currency:  core.Currency(row.Currency),
		Amount:    core.Money{Cents: row.AmountCents},
		Timestamp: time.UnixMilli(row.TimestampMs).UTC(),
	}
}

func toCategory(row Category) core.Category {
	return core.Category{
		ID:    row.ID,
		Name:  row.Name,
		Icon:  core.CategoryIcon(row.Icon),
		Color: core.CategoryColor(row.Color),
	}
}

func toExpense(row Expense) (core.Expense, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		// A stored row with a bad date is corruption, not caller input
		return core.Expense{}, core.WrapStoreError("decode expense", fmt.Errorf("expense %d has date %q", row.ID, row.Date))
	}
	return core.Expense{
		ID:         row.ID,
		Title:      row.Title,
		Amount:     core.Money{Cents: row.AmountCents},
		Date:       date,
		CategoryID: row.CategoryID,
	}, nil
}

func toExpenseDetail(row ExpenseWithCategory) (core.ExpenseDetail, error) {
	e, err := toExpense(row.Expense)
	if err != nil {
		return core.ExpenseDetail{}, err
	}
	return core.ExpenseDetail{
		Expense: e,
		Category: toCategory(Category{
			ID:    row.CategoryID,
			Name:  row.CategoryName,
			Icon:  row.CategoryIcon,
			Color: row.CategoryColor,
		}),
	}, nil
}

func toExpenseDetails(rows []ExpenseWithCategory) ([]core.ExpenseDetail, error) {
	out := make([]core.ExpenseDetail, 0, len(rows))
	for _, row := range rows {
		d, err := toExpenseDetail(row)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
