package backend

import (
	"budgetit/internal/amqp"
	"budgetit/internal/ledger"
	"budgetit/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the opened store, the optional event broker and
// a cleanup function releasing both.
type BackendResult struct {
	Store ledger.Store
	// Publisher is nil when no broker is configured or reachable.
	Publisher services.EventPublisher
	// Broker is the AMQP client behind Publisher, for consumers.
	Broker  *amqp.Client
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional unless RequireBroker is set
	AMQPURL       string
	AMQPExchange  string
	AMQPQueue     string
	RequireBroker bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
