package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetit/internal/core"
	"budgetit/internal/ledger/memory"
)

func TestCreateCategory_Validation(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, nil)

	tests := []struct {
		name  string
		cat   string
		icon  core.CategoryIcon
		color core.CategoryColor
		want  error
	}{
		{"empty name", "  ", core.IconPets, core.ColorGray, core.ErrEmptyName},
		{"no icon", "Pets", "", core.ColorGray, core.ErrInvalidIcon},
		{"no color", "Pets", core.IconPets, "", core.ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Categories.CreateCategory(ctx, tt.cat, tt.icon, tt.color)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, core.OutcomeValidationError, core.Classify(err))
		})
	}

	cs, err := l.Categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cs, "rejected categories must not be written")

	created, err := l.Categories.CreateCategory(ctx, " Pets ", core.IconPets, core.ColorGray)
	require.NoError(t, err)
	assert.Equal(t, "Pets", created.Name)
	assert.NotZero(t, created.ID)
}

func TestRequestDeletion_WithoutExpensesDeletesImmediately(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l := newTestLedger(t, nil, pub)
	c := mustCategory(t, l, "Empty")

	out, err := l.Categories.RequestDeletion(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, DeletionImmediate, out.State)
	assert.Equal(t, core.OutcomeSuccess, out.Outcome())

	_, err = l.Categories.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
	assert.Equal(t, []core.EventType{core.EventCategoryCreated, core.EventCategoryDeleted}, pub.types())
}

func TestRequestDeletion_WithExpensesChangesNothing(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, nil)
	c := mustCategory(t, l, "Food")
	for i := 0; i < 2; i++ {
		mustExpense(t, l, c.ID, 500, core.NewDate(2024, 11, 1))
	}

	out, err := l.Categories.RequestDeletion(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, DeletionAwaitingDisposition, out.State)
	assert.Equal(t, int64(2), out.DependentExpenses)
	assert.Equal(t, core.OutcomeIntegrityBlocked, out.Outcome())

	_, err = l.Categories.GetCategory(ctx, c.ID)
	require.NoError(t, err, "category must survive")
	n, err := l.Categories.DependentExpenseCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRequestDeletion_UnknownCategory(t *testing.T) {
	l := newTestLedger(t, nil, nil)
	_, err := l.Categories.RequestDeletion(context.Background(), 404)
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
}

func TestResolveDisposition_Reassign(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, nil)
	a := mustCategory(t, l, "A")
	b := mustCategory(t, l, "B")
	for i := 0; i < 3; i++ {
		mustExpense(t, l, a.ID, 100, core.NewDate(2024, 11, 1))
	}

	res, err := l.Categories.ResolveDisposition(ctx, a.ID, Reassign(b.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.AffectedExpenses)

	all, err := l.Expenses.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, e := range all {
		assert.Equal(t, b.ID, e.CategoryID)
	}

	_, err = l.Categories.GetCategory(ctx, a.ID)
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
	_, err = l.Categories.DependentExpenseCount(ctx, a.ID)
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)

	// Repeating the call finds nothing to do and leaves the ledger as it is
	_, err = l.Categories.ResolveDisposition(ctx, a.ID, Reassign(b.ID))
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
	n, err := l.Categories.DependentExpenseCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestResolveDisposition_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, nil)
	a := mustCategory(t, l, "A")
	b := mustCategory(t, l, "B")
	mustExpense(t, l, a.ID, 100, core.NewDate(2024, 11, 1))
	mustExpense(t, l, a.ID, 200, core.NewDate(2024, 11, 2))
	kept := mustExpense(t, l, b.ID, 300, core.NewDate(2024, 11, 3))

	res, err := l.Categories.ResolveDisposition(ctx, a.ID, CascadeDelete())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.AffectedExpenses)

	all, err := l.Expenses.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestResolveDisposition_InvalidTargets(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil, nil)
	a := mustCategory(t, l, "A")
	mustExpense(t, l, a.ID, 100, core.NewDate(2024, 11, 1))

	tests := []struct {
		name string
		d    Disposition
		want error
	}{
		{"self", Reassign(a.ID), core.ErrInvalidReassignTarget},
		{"missing target", Reassign(999), core.ErrInvalidReassignTarget},
		{"zero target", Reassign(0), core.ErrInvalidReassignTarget},
		{"unknown kind", Disposition{}, core.ErrInvalidDisposition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Categories.ResolveDisposition(ctx, a.ID, tt.d)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, core.OutcomeValidationError, core.Classify(err))
		})
	}

	n, err := l.Categories.DependentExpenseCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "invalid dispositions must not mutate")
}

func TestResolveDisposition_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	setup := newTestLedger(t, base, nil)
	a := mustCategory(t, setup, "A")
	b := mustCategory(t, setup, "B")
	for i := 0; i < 3; i++ {
		mustExpense(t, setup, a.ID, 100, core.NewDate(2024, 11, 1))
	}

	l := newTestLedger(t, &faultyStore{Store: base, failOn: "DeleteCategoryByID"}, nil)

	for _, d := range []Disposition{Reassign(b.ID), CascadeDelete()} {
		_, err := l.Categories.ResolveDisposition(ctx, a.ID, d)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errInjected), "underlying error must stay reachable")
		assert.Equal(t, core.OutcomePersistenceFailure, core.Classify(err))
		assert.True(t, core.Classify(err).Retryable())

		n, err := setup.Categories.DependentExpenseCount(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n, "%s must roll back", d.Kind)
		n, err = setup.Categories.DependentExpenseCount(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	}
}
