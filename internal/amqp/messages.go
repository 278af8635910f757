package amqp

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type EventType string

const (
	ExpenseCreated   EventType = "expense.created"
	ExpenseUpdated   EventType = "expense.updated"
	ExpenseDeleted   EventType = "expense.deleted"
	ExpenseGenerated EventType = "expense.generated"
)

func (t EventType) Valid() bool {
	switch t {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted, ExpenseGenerated:
		return true
	}
	return false
}

// LedgerEvent announces a change to the ledger. It carries ids only; the
// consumer reads current state from the database.
type LedgerEvent struct {
	MessageID string    `json:"message_id"`
	Type      EventType `json:"type"`
	ExpenseID int64     `json:"expense_id"`
	RuleID    int64     `json:"rule_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType EventType, expenseID int64) *LedgerEvent {
	return &LedgerEvent{
		MessageID: uuid.NewString(),
		Type:      eventType,
		ExpenseID: expenseID,
		Timestamp: time.Now().UTC(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates a delivery body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
