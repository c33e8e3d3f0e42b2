package amqp

import (
	"encoding/json"
	"time"
)

// Entry kinds carried in EntryEvent.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// EntryEvent announces a newly recorded ledger entry to downstream
// consumers. It carries identifiers only; consumers fetch details themselves.
type EntryEvent struct {
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEntryEvent builds an event stamped with the current time.
func NewEntryEvent(kind string, id, userID, amountCents int64) EntryEvent {
	return EntryEvent{
		Kind:        kind,
		ID:          id,
		UserID:      userID,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

// ToJSON serializes the event for publishing.
func (e EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON parses an event from a delivery body.
func EntryEventFromJSON(data []byte) (EntryEvent, error) {
	var e EntryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return EntryEvent{}, err
	}
	return e, nil
}
