package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// Event types double as routing keys.
const (
	EventExpenseRecorded = "expense.recorded"
	EventExpenseDeleted  = "expense.deleted"
)

// LedgerEvent announces a committed ledger mutation. It carries the full
// record so consumers never need to read back a row that may already be gone.
type LedgerEvent struct {
	Type       string          `json:"type"`
	ID         int64           `json:"id"`
	Owner      string          `json:"owner"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	RecordedAt time.Time       `json:"recorded_at"`
	Timestamp  time.Time       `json:"timestamp"`
}

func NewLedgerEvent(eventType string, e core.Expense) *LedgerEvent {
	return &LedgerEvent{
		Type:       eventType,
		ID:         e.ID,
		Owner:      e.Owner,
		Category:   e.Category,
		Amount:     e.Amount,
		RecordedAt: e.RecordedAt,
		Timestamp:  time.Now(),
	}
}

// Expense rebuilds the ledger record carried by the event.
func (m *LedgerEvent) Expense() core.Expense {
	return core.Expense{
		ID:         m.ID,
		Owner:      m.Owner,
		Category:   m.Category,
		Amount:     m.Amount,
		RecordedAt: m.RecordedAt,
	}
}

// ToJSON converts the event to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventExpenseRecorded, EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("event without expense id")
	}
	return &msg, nil
}
