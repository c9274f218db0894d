// Package models defines the server-side persisted rows.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source of a capture.
type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

// ParseStatus records how the expense reached its current shape.
type ParseStatus string

const (
	ParseAuto   ParseStatus = "auto"
	ParseEdited ParseStatus = "edited"
	ParseFailed ParseStatus = "failed"
)

// Expense is the canonical server row. ClientExpenseID is the idempotency
// key: repeated parse attempts for the same capture collapse onto one row.
type Expense struct {
	ID               string
	UserID           string
	ClientExpenseID  string
	Amount           decimal.Decimal
	Currency         string
	Category         string
	CategoryID       string
	Description      string
	Merchant         string
	TripID           string
	PaymentMethodID  string
	ExpenseDate      time.Time // date-only
	CapturedAtDevice time.Time
	SyncedAt         time.Time
	Source           Source
	ParseStatus      ParseStatus
	ParseConfidence  float64
	RawText          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
