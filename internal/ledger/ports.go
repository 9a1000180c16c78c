package ledger

import (
	"context"

	"budgetit/internal/core"
)

// Ports for the persistent ledger. Lookups that find nothing return the
// matching core not-found error; every other failure is a core.PersistenceError.
type (
	BudgetStore interface {
		// InsertBudget appends a budget entry and returns it with its id.
		InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		// LatestBudget returns the newest entry or core.ErrNoBudget.
		LatestBudget(ctx context.Context) (core.Budget, error)
		// ListBudgets returns the full history, newest first.
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	CategoryStore interface {
		CategoryCount(ctx context.Context) (int64, error)
		InsertCategory(ctx context.Context, c core.Category) (core.Category, error)
		// InsertCategories inserts all categories or none of them.
		InsertCategories(ctx context.Context, cs []core.Category) ([]core.Category, error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		// ListCategories returns categories ordered by name.
		ListCategories(ctx context.Context) ([]core.Category, error)
		// DeleteCategoryByID fails while expenses still reference the category.
		DeleteCategoryByID(ctx context.Context, id int64) error
	}

	ExpenseStore interface {
		InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.ExpenseDetail, error)
		// ListExpenses returns every expense, newest date first.
		ListExpenses(ctx context.Context) ([]core.ExpenseDetail, error)
		// ExpensesInRange returns expenses dated within [start, end], newest first.
		ExpensesInRange(ctx context.Context, start, end core.Date) ([]core.ExpenseDetail, error)
		CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error)
		// ReassignExpenses moves every expense of one category to another and
		// returns the number of rows moved.
		ReassignExpenses(ctx context.Context, from, to int64) (int64, error)
		DeleteExpensesByCategory(ctx context.Context, categoryID int64) (int64, error)
		// DeleteExpenseByID succeeds even when the row does not exist.
		DeleteExpenseByID(ctx context.Context, id int64) error
	}

	// Tx is the view of the ledger available inside a unit of work.
	Tx interface {
		BudgetStore
		CategoryStore
		ExpenseStore
	}

	// Store is a ledger that can also open units of work. Calls made directly
	// on the Store run as their own single-statement transactions.
	Store interface {
		Tx
		// WithinTx runs fn in one transaction. It commits when fn returns nil
		// and rolls everything back otherwise.
		WithinTx(ctx context.Context, fn func(tx Tx) error) error
		Close() error
	}
)
