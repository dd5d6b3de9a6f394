package expense

import (
	"errors"
	"time"
)

// EntityType is the sync entity type for expenses.
const EntityType = "expense"

var (
	ErrInvalidAmount   = errors.New("expense amount must be positive")
	ErrMissingCategory = errors.New("expense category is required")
)

// Expense is the payload of one logged cost. Amounts are integer cents to
// keep the payload stable across devices.
type Expense struct {
	Date        time.Time `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	TripID      string    `json:"trip_id,omitempty"`
	Note        string    `json:"note,omitempty"`
	ReceiptRef  string    `json:"receipt_ref,omitempty"`
}

func (e Expense) Validate() error {
	if e.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if e.Category == "" {
		return ErrMissingCategory
	}
	return nil
}
