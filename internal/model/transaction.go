// Package model defines domain types for recur transactions and detections.
package model

import "time"

// Transaction is one normalized statement row. Amount is signed: negative
// values are outflows, and only those are eligible for recurrence detection.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Account     string    `json:"account,omitempty"` // source file stem, ignored by detection
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}
