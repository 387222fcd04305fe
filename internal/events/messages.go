package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kinds of ledger events emitted after a committed mutation
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionUpdated = "transaction.updated"
	KindTransactionDeleted = "transaction.deleted"
	KindTransferCreated    = "transfer.created"
	KindGoalFunded         = "goal.funded"
	KindRecurringPosted    = "recurring.posted"
)

// LedgerEvent is a lightweight notification about a committed ledger
// mutation. Consumers that need the full rows fetch them from the store.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	EntityID  uuid.UUID `json:"entity_id"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent builds an event stamped with the current time
func NewLedgerEvent(kind string, entityID uuid.UUID, amount decimal.Decimal) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		EntityID:  entityID,
		Amount:    amount.String(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
