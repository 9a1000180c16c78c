package core

import "time"

const (
	EventBudgetSaved     EventType = "budget.saved"
	EventCategoryCreated EventType = "category.created"
	EventCategoryDeleted EventType = "category.deleted"
	EventExpenseSaved    EventType = "expense.saved"
	EventExpenseDeleted  EventType = "expense.deleted"
)

type EventType string

// LedgerEvent describes a committed change to the ledger.
type LedgerEvent struct {
	Type       EventType
	EntityID   int64
	Attributes map[string]string
	OccurredAt time.Time
}

// NewLedgerEvent builds an event stamped with the current time.
func NewLedgerEvent(t EventType, entityID int64, attrs map[string]string) LedgerEvent {
	return LedgerEvent{
		Type:       t,
		EntityID:   entityID,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}
