package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetit/internal/core"
)

// LedgerEventMessage is the wire form of a committed ledger change. ID is
// unique per message so consumers can drop redeliveries.
type LedgerEventMessage struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	EntityID   int64             `json:"entity_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewLedgerEventMessage wraps evt with a fresh message id.
func NewLedgerEventMessage(evt core.LedgerEvent) *LedgerEventMessage {
	occurred := evt.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return &LedgerEventMessage{
		ID:         uuid.NewString(),
		Type:       string(evt.Type),
		EntityID:   evt.EntityID,
		Attributes: evt.Attributes,
		OccurredAt: occurred,
		Timestamp:  time.Now().UTC(),
	}
}

// Event converts the message back to a ledger event.
func (m *LedgerEventMessage) Event() core.LedgerEvent {
	return core.LedgerEvent{
		Type:       core.EventType(m.Type),
		EntityID:   m.EntityID,
		Attributes: m.Attributes,
		OccurredAt: m.OccurredAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes a message and checks its id.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", msg.ID, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message %s has no event type", msg.ID)
	}
	return &msg, nil
}
