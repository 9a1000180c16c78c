package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Budget struct {
	ID          int64
	Currency    string
	AmountCents int64
	TimestampMs int64
}

type Category struct {
	ID    int64
	Name  string
	Icon  string
	Color string
}

type Expense struct {
	ID          int64
	Title       string
	AmountCents int64
	Date        string
	CategoryID  int64
}

type ExpenseWithCategory struct {
	Expense
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
}

const createBudget = `-- name: CreateBudget :one
INSERT INTO budgets (currency, amount_cents, timestamp_ms)
VALUES (?, ?, ?)
RETURNING id, currency, amount_cents, timestamp_ms
`

type CreateBudgetParams struct {
	Currency    string
	AmountCents int64
	TimestampMs int64
}

func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, createBudget, arg.Currency, arg.AmountCents, arg.TimestampMs)
	var i Budget
	err := row.Scan(&i.ID, &i.Currency, &i.AmountCents, &i.TimestampMs)
	return i, err
}

const getLatestBudget = `-- name: GetLatestBudget :one
SELECT id, currency, amount_cents, timestamp_ms FROM budgets
ORDER BY timestamp_ms DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestBudget(ctx context.Context) (Budget, error) {
	row := q.db.QueryRowContext(ctx, getLatestBudget)
	var i Budget
	err := row.Scan(&i.ID, &i.Currency, &i.AmountCents, &i.TimestampMs)
	return i, err
}

const listBudgets = `-- name: ListBudgets :many
SELECT id, currency, amount_cents, timestamp_ms FROM budgets
ORDER BY timestamp_ms DESC, id DESC
`

func (q *Queries) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(&i.ID, &i.Currency, &i.AmountCents, &i.TimestampMs); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCategories = `-- name: CountCategories :one
SELECT COUNT(*) FROM categories
`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategories)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, icon, color)
VALUES (?, ?, ?)
RETURNING id, name, icon, color
`

type CreateCategoryParams struct {
	Name  string
	Icon  string
	Color string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.Name, arg.Icon, arg.Color)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Icon, &i.Color)
	return i, err
}

const getCategory = `-- name: GetCategory :one
SELECT id, name, icon, color FROM categories
WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Icon, &i.Color)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, icon, color FROM categories
ORDER BY name, id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Icon, &i.Color); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories
WHERE id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (title, amount_cents, date, category_id)
VALUES (?, ?, ?, ?)
RETURNING id, title, amount_cents, date, category_id
`

type CreateExpenseParams struct {
	Title       string
	AmountCents int64
	Date        string
	CategoryID  int64
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense, arg.Title, arg.AmountCents, arg.Date, arg.CategoryID)
	var i Expense
	err := row.Scan(&i.ID, &i.Title, &i.AmountCents, &i.Date, &i.CategoryID)
	return i, err
}

const updateExpense = `-- name: UpdateExpense :one
UPDATE expenses
SET title = ?, amount_cents = ?, date = ?, category_id = ?
WHERE id = ?
RETURNING id, title, amount_cents, date, category_id
`

type UpdateExpenseParams struct {
	Title       string
	AmountCents int64
	Date        string
	CategoryID  int64
	ID          int64
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, updateExpense, arg.Title, arg.AmountCents, arg.Date, arg.CategoryID, arg.ID)
	var i Expense
	err := row.Scan(&i.ID, &i.Title, &i.AmountCents, &i.Date, &i.CategoryID)
	return i, err
}

const expenseWithCategoryColumns = `e.id, e.title, e.amount_cents, e.date, e.category_id, c.name, c.icon, c.color
FROM expenses e
JOIN categories c ON c.id = e.category_id
`

const getExpense = `-- name: GetExpense :one
SELECT ` + expenseWithCategoryColumns + `WHERE e.id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseWithCategory, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i ExpenseWithCategory
	err := row.Scan(&i.ID, &i.Title, &i.AmountCents, &i.Date, &i.CategoryID, &i.CategoryName, &i.CategoryIcon, &i.CategoryColor)
	return i, err
}

const listExpenses = `-- name: ListExpenses :many
SELECT ` + expenseWithCategoryColumns + `ORDER BY e.date DESC, e.id DESC
`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseWithCategory, error) {
	return q.queryExpenses(ctx, listExpenses)
}

const getExpensesInRange = `-- name: GetExpensesInRange :many
SELECT ` + expenseWithCategoryColumns + `WHERE e.date BETWEEN ? AND ?
ORDER BY e.date DESC, e.id DESC
`

type GetExpensesInRangeParams struct {
	StartDate string
	EndDate   string
}

func (q *Queries) GetExpensesInRange(ctx context.Context, arg GetExpensesInRangeParams) ([]ExpenseWithCategory, error) {
	return q.queryExpenses(ctx, getExpensesInRange, arg.StartDate, arg.EndDate)
}

func (q *Queries) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]ExpenseWithCategory, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseWithCategory
	for rows.Next() {
		var i ExpenseWithCategory
		if err := rows.Scan(&i.ID, &i.Title, &i.AmountCents, &i.Date, &i.CategoryID, &i.CategoryName, &i.CategoryIcon, &i.CategoryColor); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countExpensesByCategory = `-- name: CountExpensesByCategory :one
SELECT COUNT(*) FROM expenses
WHERE category_id = ?
`

func (q *Queries) CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countExpensesByCategory, categoryID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const reassignExpenses = `-- name: ReassignExpenses :execrows
UPDATE expenses
SET category_id = ?
WHERE category_id = ?
`

type ReassignExpensesParams struct {
	ToCategoryID   int64
	FromCategoryID int64
}

func (q *Queries) ReassignExpenses(ctx context.Context, arg ReassignExpensesParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, reassignExpenses, arg.ToCategoryID, arg.FromCategoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpensesByCategory = `-- name: DeleteExpensesByCategory :execrows
DELETE FROM expenses
WHERE category_id = ?
`

func (q *Queries) DeleteExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpensesByCategory, categoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `-- name: DeleteExpense :exec
DELETE FROM expenses
WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteExpense, id)
	return err
}
