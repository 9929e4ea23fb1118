package events

import (
	"encoding/json"
	"time"
)

const (
	KindExpenseCreated = "expense.created"
	KindExpenseDeleted = "expense.deleted"
)

// ExpenseEventMessage is the wire form of an expense lifecycle event.
// It carries identifiers and a few display fields, not the full record;
// consumers needing more fetch from their own copy of the data.
type ExpenseEventMessage struct {
	Kind        string    `json:"kind"`
	UserID      string    `json:"userId"`
	ExpenseIDs  []string  `json:"expenseIds"`
	AmountCents int64     `json:"amountCents,omitempty"`
	Category    string    `json:"category,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseCreatedMessage(userID, expenseID string, amountCents int64, category string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Kind:        KindExpenseCreated,
		UserID:      userID,
		ExpenseIDs:  []string{expenseID},
		AmountCents: amountCents,
		Category:    category,
		Timestamp:   time.Now(),
	}
}

func NewExpenseDeletedMessage(userID string, expenseIDs []string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Kind:       KindExpenseDeleted,
		UserID:     userID,
		ExpenseIDs: expenseIDs,
		Timestamp:  time.Now(),
	}
}

func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
