package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
)

// Parse statuses on the wire.
const (
	StatusSaved         = "saved"
	StatusNeedsReview   = "needs_review"
	StatusRejectedLimit = "rejected_limit"
	StatusError         = "error"
)

// ParseRequest mirrors the server's parse contract.
type ParseRequest struct {
	ClientExpenseID      string  `json:"client_expense_id"`
	Source               string  `json:"source"`
	CapturedAtDevice     string  `json:"captured_at_device"`
	Timezone             string  `json:"timezone"`
	AudioDurationSeconds float64 `json:"audio_duration_seconds,omitempty"`
	AudioObjectKey       string  `json:"audio_object_key,omitempty"`
	RawText              string  `json:"raw_text,omitempty"`
	CurrencyHint         string  `json:"currency_hint,omitempty"`
	LanguageHint         string  `json:"language_hint,omitempty"`
	AllowAutoSave        bool    `json:"allow_auto_save"`
	TripID               string  `json:"trip_id,omitempty"`
	TripName             string  `json:"trip_name,omitempty"`
	PaymentMethodID      string  `json:"payment_method_id,omitempty"`
	PaymentMethodName    string  `json:"payment_method_name,omitempty"`
}

type ParseResponse struct {
	Status  string          `json:"status"`
	Expense *ExpensePayload `json:"expense,omitempty"`
	Parse   *ParseInfo      `json:"parse,omitempty"`
	Usage   *UsageInfo      `json:"usage,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type ParseInfo struct {
	Confidence  float64 `json:"confidence"`
	RawText     string  `json:"raw_text,omitempty"`
	NeedsReview bool    `json:"needs_review"`
}

type UsageInfo struct {
	DailyVoiceUsed  int `json:"daily_voice_used"`
	DailyVoiceLimit int `json:"daily_voice_limit"`
}

// UpdateExpenseRequest carries the full edited draft; the server replaces
// the row wholesale.
type UpdateExpenseRequest struct {
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Category        string `json:"category"`
	CategoryID      string `json:"category_id,omitempty"`
	Description     string `json:"description,omitempty"`
	Merchant        string `json:"merchant,omitempty"`
	TripID          string `json:"trip_id,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	ExpenseDate     string `json:"expense_date"`
	RawText         string `json:"raw_text,omitempty"`
}

// ExpensePayload is the server's expense echo. The wire expense_date is a
// bare YYYY-MM-DD, hence the conversion step into ExpenseRecord.
type ExpensePayload struct {
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
	ExpenseDate      string          `json:"expense_date"`
	CapturedAtDevice time.Time       `json:"captured_at_device"`
	SyncedAt         *time.Time      `json:"synced_at,omitempty"`
	Source           string          `json:"source"`
	ParseStatus      string          `json:"parse_status"`
	ParseConfidence  float64         `json:"parse_confidence,omitempty"`
	RawText          string          `json:"raw_text,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToRecord converts the wire echo into the client's ledger model.
func (p *ExpensePayload) ToRecord() *models.ExpenseRecord {
	expenseDate, err := time.Parse("2006-01-02", p.ExpenseDate)
	if err != nil {
		expenseDate = p.CapturedAtDevice
	}
	return &models.ExpenseRecord{
		ID:               p.ID,
		ClientExpenseID:  p.ClientExpenseID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Category:         p.Category,
		CategoryID:       p.CategoryID,
		Description:      p.Description,
		Merchant:         p.Merchant,
		TripID:           p.TripID,
		PaymentMethodID:  p.PaymentMethodID,
		ExpenseDate:      expenseDate,
		CapturedAtDevice: p.CapturedAtDevice,
		SyncedAt:         p.SyncedAt,
		Source:           models.Source(p.Source),
		ParseStatus:      models.ParseStatus(p.ParseStatus),
		ParseConfidence:  p.ParseConfidence,
		RawText:          p.RawText,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
