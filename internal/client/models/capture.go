// Package models defines the client-side state: queued captures, ledger
// records, the taxonomy snapshot and delete tombstones.
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Source of a capture.
type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

// CaptureStatus is the queue state machine. pending and failed are
// retryable; saved and needsReview are terminal for the sync engine.
type CaptureStatus string

const (
	StatusPending     CaptureStatus = "pending"
	StatusSyncing     CaptureStatus = "syncing"
	StatusNeedsReview CaptureStatus = "needs_review"
	StatusSaved       CaptureStatus = "saved"
	StatusFailed      CaptureStatus = "failed"
)

// ExpenseDraft is the structured, editable result of parsing one capture.
type ExpenseDraft struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	CategoryID  string          `json:"category_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Merchant    string          `json:"merchant,omitempty"`
	ExpenseDate time.Time       `json:"expense_date"`
	Confidence  float64         `json:"confidence,omitempty"`
}

// QueuedCapture is one unconfirmed capture. ClientExpenseID is assigned once
// at creation and never regenerated; it is the sole correlation key between
// the queue entry and its eventual ledger row.
type QueuedCapture struct {
	ID                   string        `json:"id"`
	ClientExpenseID      string        `json:"client_expense_id"`
	Source               Source        `json:"source"`
	CapturedAt           time.Time     `json:"captured_at"`
	LocalAudioFilePath   string        `json:"local_audio_file_path,omitempty"`
	AudioDurationSeconds float64       `json:"audio_duration_seconds,omitempty"`
	RawText              string        `json:"raw_text,omitempty"`
	Status               CaptureStatus `json:"status"`
	RetryCount           int           `json:"retry_count"`
	LastError            string        `json:"last_error,omitempty"`
	ServerExpenseID      string        `json:"server_expense_id,omitempty"`
	TripID               string        `json:"trip_id,omitempty"`
	PaymentMethodID      string        `json:"payment_method_id,omitempty"`

	// ParsedDraft is only meaningful in needsReview and saved; the status
	// field is the serialization discriminant.
	ParsedDraft *ExpenseDraft `json:"parsed_draft,omitempty"`
}

// capturePayload mirrors QueuedCapture for serialization.
type capturePayload QueuedCapture

// MarshalJSON enforces the state/payload pairing: a draft is written only
// for statuses that carry one.
func (c QueuedCapture) MarshalJSON() ([]byte, error) {
	p := capturePayload(c)
	if !c.CarriesDraft() {
		p.ParsedDraft = nil
	}
	return json.Marshal(p)
}

func (c *QueuedCapture) UnmarshalJSON(data []byte) error {
	var p capturePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = QueuedCapture(p)
	if !c.CarriesDraft() {
		c.ParsedDraft = nil
	}
	return nil
}

// CarriesDraft reports whether the current status legitimately has a parsed
// draft attached.
func (c *QueuedCapture) CarriesDraft() bool {
	return c.Status == StatusNeedsReview || c.Status == StatusSaved
}

// Retryable reports whether the capture can be sent back to pending.
func (c *QueuedCapture) Retryable() bool {
	return c.Status == StatusFailed || c.Status == StatusPending
}
