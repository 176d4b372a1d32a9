// Package model defines the raw record types the analytics engine consumes.
// Records are owned by the caller; the engine never mutates them and never
// persists anything derived from them.
package model

import "math"

// IncomeRecord is a single dated income event.
type IncomeRecord struct {
	Date     Date    `json:"date"`
	Amount   float64 `json:"amount"`
	Source   string  `json:"source"`
	ClientID string  `json:"clientId,omitempty"`
}

// SpendingRecord is a single dated expense event. Reason is free text and is
// normalized into a category by the expense engine.
type SpendingRecord struct {
	Date   Date    `json:"date"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// LoanRecord is money lent out or borrowed.
type LoanRecord struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IsPaid      bool    `json:"isPaid"`
	Date        Date    `json:"date"`
}

// ClientRecord identifies a client for revenue attribution.
type ClientRecord struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Company  string `json:"company,omitempty"`
}

// TodoRecord is a dated task, queried by the natural-language engine.
type TodoRecord struct {
	Description string `json:"description"`
	DueDate     Date   `json:"dueDate"`
	IsCompleted bool   `json:"isCompleted"`
}

// SafeAmount maps negative and non-finite amounts to 0 so malformed records
// never abort a batch or poison an aggregate.
func SafeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
