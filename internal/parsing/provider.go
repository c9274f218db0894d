package parsing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrProviderUnavailable signals that the AI extractor cannot be used right
// now (missing key, network, model outage). The engine falls back to rules.
var ErrProviderUnavailable = errors.New("extraction provider unavailable")

// Provider is an AI-based expense extractor. Implementations must constrain
// the model to JSON output and to the caller's known category set.
type Provider interface {
	Extract(ctx context.Context, req Request) (*Draft, error)
}

// providerPayload is the JSON shape every provider instructs its model to
// emit. Amount arrives as a string so precision survives the model output.
type providerPayload struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
	ExpenseDate string `json:"expense_date"`
}

// toDraft validates and converts a model payload. Dates the model could not
// determine fall back to the capture date; an unknown category falls back to
// the default resolved later by the engine.
func (p providerPayload) toDraft(req Request) (*Draft, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return nil, err
	}

	d := &Draft{
		Amount:      amount,
		Currency:    p.Currency,
		Category:    p.Category,
		Description: p.Description,
		Merchant:    p.Merchant,
		ExpenseDate: req.CapturedAt,
	}
	if t, err := time.Parse("2006-01-02", p.ExpenseDate); err == nil {
		d.ExpenseDate = t
	}
	return d, nil
}
