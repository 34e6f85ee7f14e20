package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
	EventCategoryCreated    EventType = "category.created"
	EventCategoryDeleted    EventType = "category.deleted"
)

// LedgerEvent announces a committed change to an owner's ledger.
// It carries identifiers only; consumers always re-read the store.
type LedgerEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Owner         string    `json:"owner"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Category      string    `json:"category,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps a new event with a random id and the current time.
func NewLedgerEvent(typ EventType, owner string, transactionID int64) *LedgerEvent {
	return &LedgerEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		Owner:         owner,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var evt LedgerEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	if evt.Owner == "" {
		return nil, fmt.Errorf("ledger event %q has no owner", evt.ID)
	}
	switch evt.Type {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted,
		EventCategoryCreated, EventCategoryDeleted:
	default:
		return nil, fmt.Errorf("ledger event %q has unknown type %q", evt.ID, evt.Type)
	}
	return &evt, nil
}
