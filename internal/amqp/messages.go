package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"
)

type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
)

func (t EventType) valid() bool {
	switch t {
	case TransactionCreated, TransactionUpdated, TransactionDeleted:
		return true
	}
	return false
}

// LedgerEvent announces a change to a single transaction. It carries enough
// to locate the affected account and month without reading the ledger, which
// matters for deletions.
type LedgerEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	AccountID     int64     `json:"account_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event with a fresh id for tx.
func NewLedgerEvent(typ EventType, tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		TransactionID: tx.ID,
		AccountID:     tx.AccountID,
		OccurredAt:    tx.CreatedAt.UTC(),
		Timestamp:     time.Now().UTC(),
	}
}

// Period is the calendar month the affected transaction belongs to.
func (e *LedgerEvent) Period() (core.Period, error) {
	return core.MonthPeriod(e.OccurredAt.Year(), int(e.OccurredAt.Month()))
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(ev.ID); err != nil {
		return nil, fmt.Errorf("event id: %w", err)
	}
	if !ev.Type.valid() {
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.AccountID < 1 {
		return nil, fmt.Errorf("event %s: missing account id", ev.ID)
	}
	return &ev, nil
}
