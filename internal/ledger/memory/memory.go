package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
)

var errForeignKey = errors.New("FOREIGN KEY constraint failed")

// Store keeps the ledger in process memory. Transactions work on a copy of
// the state that replaces the live one only when the callback succeeds.
type Store struct {
	mu sync.Mutex
	st *state
}

type state struct {
	budgets      []core.Budget
	categories   map[int64]core.Category
	expenses     map[int64]core.Expense
	nextBudget   int64
	nextCategory int64
	nextExpense  int64
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: &state{
		categories: map[int64]core.Category{},
		expenses:   map[int64]core.Expense{},
	}}
}

func (st *state) clone() *state {
	c := &state{
		budgets:      append([]core.Budget(nil), st.budgets...),
		categories:   make(map[int64]core.Category, len(st.categories)),
		expenses:     make(map[int64]core.Expense, len(st.expenses)),
		nextBudget:   st.nextBudget,
		nextCategory: st.nextCategory,
		nextExpense:  st.nextExpense,
	}
	for id, cat := range st.categories {
		c.categories[id] = cat
	}
	for id, e := range st.expenses {
		c.expenses[id] = e
	}
	return c
}

// WithinTx runs fn against a private copy of the ledger. Transactions are
// serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&view{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) read(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.st})
}

func (s *Store) write(ctx context.Context, fn func(v *view) error) error {
	return s.WithinTx(ctx, func(tx ledger.Tx) error {
		return fn(tx.(*view))
	})
}

func (s *Store) InsertBudget(ctx context.Context, b core.Budget) (out core.Budget, err error) {
	err = s.write(ctx, func(v *view) error {
		out, err = v.InsertBudget(ctx, b)
		return err
	})
	return out, err
}

func (s *Store) LatestBudget(ctx context.Context) (out core.Budget, err error) {
	err = s.read(func(v *view) error {
		out, err = v.LatestBudget(ctx)
		return err
	})
	return out, err
}

func (s *Store) ListBudgets(ctx context.Context) (out []core.Budget, err error) {
	err = s.read(func(v *view) error {
		out, err = v.ListBudgets(ctx)
		return err
	})
	return out, err
}

func (s *Store) CategoryCount(ctx context.Context) (n int64, err error) {
	err = s.read(func(v *view) error {
		n, err = v.CategoryCount(ctx)
		return err
	})
	return n, err
}

func (s *Store) InsertCategory(ctx context.Context, c core.Category) (out core.Category, err error) {
	err = s.write(ctx, func(v *view) error {
		out, err = v.InsertCategory(ctx, c)
		return err
	})
	return out, err
}

func (s *Store) InsertCategories(ctx context.Context, cs []core.Category) (out []core.Category, err error) {
	err = s.write(ctx, func(v *view) error {
		out, err = v.InsertCategories(ctx, cs)
		return err
	})
	return out, err
}

func (s *Store) GetCategory(ctx context.Context, id int64) (out core.Category, err error) {
	err = s.read(func(v *view) error {
		out, err = v.GetCategory(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) ListCategories(ctx context.Context) (out []core.Category, err error) {
	err = s.read(func(v *view) error {
		out, err = v.ListCategories(ctx)
		return err
	})
	return out, err
}

func (s *Store) DeleteCategoryByID(ctx context.Context, id int64) error {
	return s.write(ctx, func(v *view) error {
		return v.DeleteCategoryByID(ctx, id)
	})
}

func (s *Store) InsertExpense(ctx context.Context, e core.Expense) (out core.Expense, err error) {
	err = s.write(ctx, func(v *view) error {
		out, err = v.InsertExpense(ctx, e)
		return err
	})
	return out, err
}

func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) (out core.Expense, err error) {
	err = s.write(ctx, func(v *view) error {
		out, err = v.UpdateExpense(ctx, e)
		return err
	})
	return out, err
}

func (s *Store) GetExpense(ctx context.Context, id int64) (out core.ExpenseDetail, err error) {
	err = s.read(func(v *view) error {
		out, err = v.GetExpense(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) ListExpenses(ctx context.Context) (out []core.ExpenseDetail, err error) {
	err = s.read(func(v *view) error {
		out, err = v.ListExpenses(ctx)
		return err
	})
	return out, err
}

func (s *Store) ExpensesInRange(ctx context.Context, start, end core.Date) (out []core.ExpenseDetail, err error) {
	err = s.read(func(v *view) error {
		out, err = v.ExpensesInRange(ctx, start, end)
		return err
	})
	return out, err
}

func (s *Store) CountExpensesByCategory(ctx context.Context, categoryID int64) (n int64, err error) {
	err = s.read(func(v *view) error {
		n, err = v.CountExpensesByCategory(ctx, categoryID)
		return err
	})
	return n, err
}

func (s *Store) ReassignExpenses(ctx context.Context, from, to int64) (n int64, err error) {
	err = s.write(ctx, func(v *view) error {
		n, err = v.ReassignExpenses(ctx, from, to)
		return err
	})
	return n, err
}

func (s *Store) DeleteExpensesByCategory(ctx context.Context, categoryID int64) (n int64, err error) {
	err = s.write(ctx, func(v *view) error {
		n, err = v.DeleteExpensesByCategory(ctx, categoryID)
		return err
	})
	return n, err
}

func (s *Store) DeleteExpenseByID(ctx context.Context, id int64) error {
	return s.write(ctx, func(v *view) error {
		return v.DeleteExpenseByID(ctx, id)
	})
}

// view implements ledger.Tx over a state the caller has already locked.
type view struct {
	st *state
}

func (v *view) InsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	v.st.nextBudget++
	b.ID = v.st.nextBudget
	v.st.budgets = append(v.st.budgets, b)
	return b, nil
}

func (v *view) LatestBudget(ctx context.Context) (core.Budget, error) {
	all, _ := v.ListBudgets(ctx)
	if len(all) == 0 {
		return core.Budget{}, core.ErrNoBudget
	}
	return all[0], nil
}

func (v *view) ListBudgets(_ context.Context) ([]core.Budget, error) {
	out := append([]core.Budget(nil), v.st.budgets...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (v *view) CategoryCount(_ context.Context) (int64, error) {
	return int64(len(v.st.categories)), nil
}

func (v *view) InsertCategory(_ context.Context, c core.Category) (core.Category, error) {
	v.st.nextCategory++
	c.ID = v.st.nextCategory
	v.st.categories[c.ID] = c
	return c, nil
}

func (v *view) InsertCategories(ctx context.Context, cs []core.Category) ([]core.Category, error) {
	out := make([]core.Category, 0, len(cs))
	for _, c := range cs {
		inserted, _ := v.InsertCategory(ctx, c)
		out = append(out, inserted)
	}
	return out, nil
}

func (v *view) GetCategory(_ context.Context, id int64) (core.Category, error) {
	c, ok := v.st.categories[id]
	if !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

func (v *view) ListCategories(_ context.Context) ([]core.Category, error) {
	out := make([]core.Category, 0, len(v.st.categories))
	for _, c := range v.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v *view) DeleteCategoryByID(ctx context.Context, id int64) error {
	if _, ok := v.st.categories[id]; !ok {
		return core.ErrCategoryNotFound
	}
	if n, _ := v.CountExpensesByCategory(ctx, id); n > 0 {
		return core.WrapStoreError("delete category", errForeignKey)
	}
	delete(v.st.categories, id)
	return nil
}

func (v *view) InsertExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if _, ok := v.st.categories[e.CategoryID]; !ok {
		return core.Expense{}, core.WrapStoreError("insert expense", errForeignKey)
	}
	v.st.nextExpense++
	e.ID = v.st.nextExpense
	v.st.expenses[e.ID] = e
	return e, nil
}

func (v *view) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if _, ok := v.st.expenses[e.ID]; !ok {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if _, ok := v.st.categories[e.CategoryID]; !ok {
		return core.Expense{}, core.WrapStoreError("update expense", errForeignKey)
	}
	v.st.expenses[e.ID] = e
	return e, nil
}

func (v *view) GetExpense(_ context.Context, id int64) (core.ExpenseDetail, error) {
	e, ok := v.st.expenses[id]
	if !ok {
		return core.ExpenseDetail{}, core.ErrExpenseNotFound
	}
	return v.detail(e), nil
}

func (v *view) ListExpenses(_ context.Context) ([]core.ExpenseDetail, error) {
	return v.collect(func(core.Expense) bool { return true }), nil
}

func (v *view) ExpensesInRange(_ context.Context, start, end core.Date) ([]core.ExpenseDetail, error) {
	return v.collect(func(e core.Expense) bool {
		return !e.Date.Before(start.Time) && !e.Date.After(end.Time)
	}), nil
}

func (v *view) CountExpensesByCategory(_ context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, e := range v.st.expenses {
		if e.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (v *view) ReassignExpenses(_ context.Context, from, to int64) (int64, error) {
	if _, ok := v.st.categories[to]; !ok {
		return 0, core.WrapStoreError("reassign expenses", errForeignKey)
	}
	var n int64
	for id, e := range v.st.expenses {
		if e.CategoryID == from {
			e.CategoryID = to
			v.st.expenses[id] = e
			n++
		}
	}
	return n, nil
}

func (v *view) DeleteExpensesByCategory(_ context.Context, categoryID int64) (int64, error) {
	var n int64
	for id, e := range v.st.expenses {
		if e.CategoryID == categoryID {
			delete(v.st.expenses, id)
			n++
		}
	}
	return n, nil
}

func (v *view) DeleteExpenseByID(_ context.Context, id int64) error {
	delete(v.st.expenses, id)
	return nil
}

func (v *view) detail(e core.Expense) core.ExpenseDetail {
	return core.ExpenseDetail{Expense: e, Category: v.st.categories[e.CategoryID]}
}

func (v *view) collect(keep func(core.Expense) bool) []core.ExpenseDetail {
	out := make([]core.ExpenseDetail, 0)
	for _, e := range v.st.expenses {
		if keep(e) {
			out = append(out, v.detail(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date.String(), out[j].Date.String()
		if di != dj {
			return di > dj
		}
		return out[i].ID > out[j].ID
	})
	return out
}
