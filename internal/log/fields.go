package log

import "budgetit/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldOutcome     = "outcome"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCategoryID  = "category_id"
	FieldCategory    = "category"
	FieldTargetID    = "target_category_id"
	FieldDependents  = "dependent_expenses"
	FieldDisposition = "disposition"
	FieldExpenseID   = "expense_id"
	FieldTitle       = "title"
	FieldAmountCents = "amount_cents"
	FieldDate        = "date"
	FieldCurrency    = "currency"
	FieldBudgetID    = "budget_id"
	FieldTimeFrame   = "time_frame"
	FieldGranularity = "granularity"
	FieldEventType   = "event_type"
	FieldEventID     = "event_id"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentBudget    = "budget"
	ComponentCategory  = "category"
	ComponentExpense   = "expense"
	ComponentAnalysis  = "analysis"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
	ComponentTimeFrame = "time_frame"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpReassign  = "reassign"
	OpCascade   = "cascade_delete"
	OpSeed      = "seed"
	OpAggregate = "aggregate"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCategory adds category fields
func (f LogFields) WithCategory(c core.Category) LogFields {
	f[FieldCategoryID] = c.ID
	f[FieldCategory] = c.Name
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(e core.Expense) LogFields {
	f[FieldExpenseID] = e.ID
	f[FieldTitle] = e.Title
	f[FieldAmountCents] = e.Amount.Cents
	f[FieldDate] = e.Date.String()
	f[FieldCategoryID] = e.CategoryID
	return f
}

// WithTimeFrame adds the analysis window
func (f LogFields) WithTimeFrame(tf core.TimeFrame) LogFields {
	f[FieldGranularity] = string(tf.Granularity)
	f[FieldTimeFrame] = tf.Start.String() + ".." + tf.End.String()
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
