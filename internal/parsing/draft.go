// Package parsing turns raw capture text into a structured expense draft with
// a calibrated confidence score. An AI-based extractor is tried first and a
// deterministic rule engine guarantees that every parse produces the same
// shape even when no model is reachable.
package parsing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aguerraochoa/Speakance-sub000/internal/textnorm"
)

// Request carries raw text plus every contextual hint the extractors may use.
type Request struct {
	RawText         string
	CurrencyHint    string
	LanguageHint    string
	DefaultCurrency string
	Categories      []textnorm.AliasSet
	CapturedAt      time.Time
}

// Draft is the structured result of parsing one capture. Both the AI path and
// the rule engine produce exactly this shape.
type Draft struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Merchant    string          `json:"merchant,omitempty"`
	ExpenseDate time.Time       `json:"expense_date"`
}

// Result pairs a draft with its confidence.
type Result struct {
	Draft      Draft
	Confidence float64
	// FromRules is true when the deterministic engine produced the draft.
	FromRules bool
}
