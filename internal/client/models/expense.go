package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParseStatus records how an expense reached its current shape.
type ParseStatus string

const (
	ParseAuto   ParseStatus = "auto"
	ParseEdited ParseStatus = "edited"
	ParseFailed ParseStatus = "failed"
)

// ExpenseRecord is a confirmed ledger row. ID is the server-canonical
// identity; ClientExpenseID is the idempotency key shared with the queue.
type ExpenseRecord struct {
	ID               string          `json:"id"`
	ClientExpenseID  string          `json:"client_expense_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Category         string          `json:"category"`
	CategoryID       string          `json:"category_id,omitempty"`
	Description      string          `json:"description,omitempty"`
	Merchant         string          `json:"merchant,omitempty"`
	TripID           string          `json:"trip_id,omitempty"`
	PaymentMethodID  string          `json:"payment_method_id,omitempty"`
	ExpenseDate      time.Time       `json:"expense_date"`
	CapturedAtDevice time.Time       `json:"captured_at_device"`
	SyncedAt         *time.Time      `json:"synced_at,omitempty"`
	Source           Source          `json:"source"`
	ParseStatus      ParseStatus     `json:"parse_status"`
	ParseConfidence  float64         `json:"parse_confidence,omitempty"`
	RawText          string          `json:"raw_text,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// RecentlyDeletedExpenseEntry is a tombstone: the deleted expense plus any
// queue entries that referenced it, kept for 30 days to support restore and
// to stop a stale remote refresh from resurrecting the row.
type RecentlyDeletedExpenseEntry struct {
	Expense      ExpenseRecord   `json:"expense"`
	QueueEntries []QueuedCapture `json:"queue_entries,omitempty"`
	DeletedAt    time.Time       `json:"deleted_at"`
}
