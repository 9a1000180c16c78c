package core

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
	ErrIntegrity   = errors.New("integrity blocked")
)

var (
	ErrInvalidDay            = fmt.Errorf("%w: invalid day", ErrValidation)
	ErrInvalidMonth          = fmt.Errorf("%w: invalid month", ErrValidation)
	ErrInvalidDate           = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidAmount         = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrNegativeBudget        = fmt.Errorf("%w: budget amount cannot be negative", ErrValidation)
	ErrAmountOverflow        = fmt.Errorf("%w: amount total out of range", ErrValidation)
	ErrInvalidCurrency       = fmt.Errorf("%w: invalid currency", ErrValidation)
	ErrEmptyTitle            = fmt.Errorf("%w: empty title", ErrValidation)
	ErrTitleTooLong          = fmt.Errorf("%w: title too long (max %d characters)", ErrValidation, maxTitleLength)
	ErrEmptyName             = fmt.Errorf("%w: empty category name", ErrValidation)
	ErrInvalidIcon           = fmt.Errorf("%w: icon not selected", ErrValidation)
	ErrInvalidColor          = fmt.Errorf("%w: color not selected", ErrValidation)
	ErrMissingCategory       = fmt.Errorf("%w: expense has no category", ErrValidation)
	ErrUnknownCategory       = fmt.Errorf("%w: expense references an unknown category", ErrValidation)
	ErrInvalidReassignTarget = fmt.Errorf("%w: invalid reassignment target", ErrValidation)
	ErrInvalidDisposition    = fmt.Errorf("%w: invalid disposition", ErrValidation)

	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrExpenseNotFound  = fmt.Errorf("expense %w", ErrNotFound)
	ErrNoBudget         = fmt.Errorf("budget %w", ErrNotFound)

	ErrCategoryInUse = fmt.Errorf("%w: category still has expenses", ErrIntegrity)
)

// PersistenceError reports a store operation that could not complete.
// It matches both ErrPersistence and the underlying store error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// WrapStoreError marks err as a persistence failure unless it already belongs
// to one of the other classes, which pass through untouched.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrIntegrity) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Outcome is the business result of an engine operation.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidationError
	OutcomeIntegrityBlocked
	OutcomePersistenceFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationError:
		return "validation_error"
	case OutcomeIntegrityBlocked:
		return "integrity_blocked"
	case OutcomePersistenceFailure:
		return "persistence_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Retryable reports whether repeating the same call may succeed.
func (o Outcome) Retryable() bool {
	return o == OutcomePersistenceFailure
}

// Classify maps an error returned by the engine onto an Outcome.
// A missing record is something the caller has to fix, so it counts as a
// validation error.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return OutcomeValidationError
	case errors.Is(err, ErrIntegrity):
		return OutcomeIntegrityBlocked
	default:
		return OutcomePersistenceFailure
	}
}
