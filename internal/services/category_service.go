package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"budgetit/internal/core"
	"budgetit/internal/ledger"
	applog "budgetit/internal/log"
)

// DeletionState tells whether a deletion request finished or needs a decision.
type DeletionState int

const (
	// DeletionImmediate means the category had no expenses and is gone.
	DeletionImmediate DeletionState = iota
	// DeletionAwaitingDisposition means expenses still reference the category
	// and nothing was changed.
	DeletionAwaitingDisposition
)

func (s DeletionState) String() string {
	if s == DeletionAwaitingDisposition {
		return "awaiting_disposition"
	}
	return "immediate"
}

// DeletionOutcome is the result of RequestDeletion.
type DeletionOutcome struct {
	State             DeletionState
	CategoryID        int64
	DependentExpenses int64
}

// Outcome maps the deletion result onto the engine outcome union.
func (o DeletionOutcome) Outcome() core.Outcome {
	if o.State == DeletionAwaitingDisposition {
		return core.OutcomeIntegrityBlocked
	}
	return core.OutcomeSuccess
}

// DispositionKind selects what happens to the expenses of a deleted category.
type DispositionKind int

const (
	DispositionReassign DispositionKind = iota + 1
	DispositionCascadeDelete
)

func (k DispositionKind) String() string {
	switch k {
	case DispositionReassign:
		return "reassign"
	case DispositionCascadeDelete:
		return "cascade_delete"
	default:
		return "unknown"
	}
}

// Disposition is the caller's decision for a category that still has expenses.
type Disposition struct {
	Kind             DispositionKind
	TargetCategoryID int64
}

// Reassign moves the expenses to target before deleting the category.
func Reassign(target int64) Disposition {
	return Disposition{Kind: DispositionReassign, TargetCategoryID: target}
}

// CascadeDelete deletes the expenses together with the category.
func CascadeDelete() Disposition {
	return Disposition{Kind: DispositionCascadeDelete}
}

// DispositionResult describes a completed disposition.
type DispositionResult struct {
	CategoryID       int64
	Disposition      Disposition
	AffectedExpenses int64
}

// CategoryService manages the category lifecycle.
type CategoryService struct {
	store    ledger.Store
	notifier *Notifier
	log      *applog.StructuredLogger
}

func NewCategoryService(store ledger.Store, notifier *Notifier) *CategoryService {
	return &CategoryService{
		store:    store,
		notifier: notifier,
		log:      applog.NewStructuredLogger(applog.Default().WithComponent(applog.ComponentCategory)),
	}
}

// CreateCategory validates and inserts a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, icon core.CategoryIcon, color core.CategoryColor) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name), Icon: icon, Color: color}
	if err := c.Validate(); err != nil {
		s.log.LogOutcome(ctx, "Category rejected", applog.OpCreate, err, applog.NewFields().With(applog.FieldCategory, c.Name))
		return core.Category{}, err
	}

	created, err := s.store.InsertCategory(ctx, c)
	s.log.LogOutcome(ctx, "Category saved", applog.OpCreate, err, applog.NewFields().WithCategory(created))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.notifier.Committed(ctx, core.NewLedgerEvent(core.EventCategoryCreated, created.ID, map[string]string{
		"name":  created.Name,
		"icon":  string(created.Icon),
		"color": string(created.Color),
	}))
	return created, nil
}

// GetCategory returns one category or core.ErrCategoryNotFound.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// ListCategories returns every category ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]core.Category, error) {
	cs, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

// DependentExpenseCount counts the expenses referencing a category. The
// count is read from the store on every call.
func (s *CategoryService) DependentExpenseCount(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}
		var err error
		n, err = tx.CountExpensesByCategory(ctx, id)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count dependent expenses of category %d: %w", id, err)
	}
	return n, nil
}

// RequestDeletion deletes a category that no expense references. When
// expenses still reference it nothing is changed and the caller has to
// choose a disposition with ResolveDisposition.
func (s *CategoryService) RequestDeletion(ctx context.Context, id int64) (DeletionOutcome, error) {
	out := DeletionOutcome{CategoryID: id}
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountExpensesByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			out.State = DeletionAwaitingDisposition
			out.DependentExpenses = n
			return nil
		}
		out.State = DeletionImmediate
		return tx.DeleteCategoryByID(ctx, id)
	})

	fields := applog.NewFields().
		With(applog.FieldCategoryID, id).
		With(applog.FieldDependents, out.DependentExpenses)
	if err != nil {
		s.log.LogOutcome(ctx, "Category deletion failed", applog.OpDelete, err, fields)
		return DeletionOutcome{}, fmt.Errorf("delete category %d: %w", id, err)
	}

	if out.State == DeletionAwaitingDisposition {
		s.log.Logger().InfoContext(ctx, "Category deletion awaits a disposition", fields.ToSlice()...)
		return out, nil
	}

	s.log.LogOutcome(ctx, "Category deleted", applog.OpDelete, nil, fields)
	s.notifier.Committed(ctx, core.NewLedgerEvent(core.EventCategoryDeleted, id, map[string]string{
		"disposition": "none",
	}))
	return out, nil
}

// ResolveDisposition deletes a category after reassigning or deleting its
// expenses, all in one transaction. The dependent count is re-read inside
// the transaction. Calling it again for a category that is already gone
// returns core.ErrCategoryNotFound and changes nothing.
func (s *CategoryService) ResolveDisposition(ctx context.Context, id int64, d Disposition) (DispositionResult, error) {
	if err := validateDisposition(id, d); err != nil {
		s.log.LogOutcome(ctx, "Disposition rejected", d.Kind.String(), err, applog.NewFields().With(applog.FieldCategoryID, id))
		return DispositionResult{}, err
	}

	result := DispositionResult{CategoryID: id, Disposition: d}
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}

		var err error
		switch d.Kind {
		case DispositionReassign:
			if _, err := tx.GetCategory(ctx, d.TargetCategoryID); err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return fmt.Errorf("%w: category %d does not exist", core.ErrInvalidReassignTarget, d.TargetCategoryID)
				}
				return err
			}
			result.AffectedExpenses, err = tx.ReassignExpenses(ctx, id, d.TargetCategoryID)
		case DispositionCascadeDelete:
			result.AffectedExpenses, err = tx.DeleteExpensesByCategory(ctx, id)
		}
		if err != nil {
			return err
		}
		return tx.DeleteCategoryByID(ctx, id)
	})

	fields := applog.NewFields().
		With(applog.FieldCategoryID, id).
		With(applog.FieldDisposition, d.Kind.String()).
		With(applog.FieldDependents, result.AffectedExpenses)
	if d.Kind == DispositionReassign {
		fields.With(applog.FieldTargetID, d.TargetCategoryID)
	}
	op := applog.OpCascade
	if d.Kind == DispositionReassign {
		op = applog.OpReassign
	}
	s.log.LogOutcome(ctx, "Category disposition resolved", op, err, fields)
	if err != nil {
		return DispositionResult{}, fmt.Errorf("resolve disposition for category %d: %w", id, err)
	}

	attrs := map[string]string{
		"disposition":       d.Kind.String(),
		"affected_expenses": strconv.FormatInt(result.AffectedExpenses, 10),
	}
	if d.Kind == DispositionReassign {
		attrs["target_category_id"] = strconv.FormatInt(d.TargetCategoryID, 10)
	}
	s.notifier.Committed(ctx, core.NewLedgerEvent(core.EventCategoryDeleted, id, attrs))
	return result, nil
}

func validateDisposition(id int64, d Disposition) error {
	switch d.Kind {
	case DispositionReassign:
		if d.TargetCategoryID <= 0 {
			return fmt.Errorf("%w: no target category", core.ErrInvalidReassignTarget)
		}
		if d.TargetCategoryID == id {
			return fmt.Errorf("%w: cannot reassign a category to itself", core.ErrInvalidReassignTarget)
		}
		return nil
	case DispositionCascadeDelete:
		return nil
	default:
		return core.ErrInvalidDisposition
	}
}
