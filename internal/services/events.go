package services

import (
	"context"
	"sync"

	"budgetit/internal/core"
	applog "budgetit/internal/log"
)

// EventPublisher delivers ledger events outside the process.
type EventPublisher interface {
	Publish(ctx context.Context, evt core.LedgerEvent) error
}

// Notifier is told about every committed mutation. It runs the registered
// hooks synchronously and then publishes the event. Publishing is best
// effort: the change is already durable, so failures are only logged.
// A nil *Notifier is valid and does nothing.
type Notifier struct {
	publisher EventPublisher
	logger    *applog.Logger

	mu    sync.RWMutex
	hooks []func(core.LedgerEvent)
}

// NewNotifier creates a notifier. publisher may be nil.
func NewNotifier(publisher EventPublisher) *Notifier {
	return &Notifier{
		publisher: publisher,
		logger:    applog.Default().WithComponent(applog.ComponentAMQP),
	}
}

// OnCommit registers a hook run after each committed mutation.
func (n *Notifier) OnCommit(hook func(core.LedgerEvent)) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks = append(n.hooks, hook)
}

// Committed reports a mutation that has been committed.
func (n *Notifier) Committed(ctx context.Context, evt core.LedgerEvent) {
	if n == nil {
		return
	}

	n.mu.RLock()
	hooks := append([]func(core.LedgerEvent){}, n.hooks...)
	n.mu.RUnlock()
	for _, hook := range hooks {
		hook(evt)
	}

	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, evt); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish ledger event",
			applog.FieldEventType, string(evt.Type),
			"entity_id", evt.EntityID,
			applog.FieldError, err)
		// Don't fail the operation - the change is committed locally
	}
}
