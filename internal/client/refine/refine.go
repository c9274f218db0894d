// Package refine applies the client-side refinement pass to every parsed
// draft before it reaches the ledger: category linking, currency override,
// payment-method detection and date re-detection.
package refine

import (
	"strings"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/textnorm"
)

// Refiner carries the taxonomy and defaults the pass resolves against.
type Refiner struct {
	snapshot        *models.MetadataSnapshot
	defaultCurrency string
}

func New(snapshot *models.MetadataSnapshot, defaultCurrency string) *Refiner {
	if snapshot == nil {
		snapshot = &models.MetadataSnapshot{}
	}
	if snapshot.Profile.DefaultCurrency != "" {
		defaultCurrency = snapshot.Profile.DefaultCurrency
	}
	return &Refiner{snapshot: snapshot, defaultCurrency: defaultCurrency}
}

// Apply refines draft in place using the capture's raw text and timestamp.
// paymentMethodHint is the id already attached to the capture, if any.
func (r *Refiner) Apply(draft *models.ExpenseDraft, rawText string, capturedAt time.Time, paymentMethodID string) (refinedPaymentMethodID string) {
	r.linkCategory(draft, rawText)
	r.overrideCurrency(draft, rawText)
	refinedPaymentMethodID = r.detectPaymentMethod(rawText, paymentMethodID)
	r.refineDate(draft, rawText, capturedAt)
	return refinedPaymentMethodID
}

// linkCategory links the draft to a known category: an exact
// case-insensitive name match wins outright; otherwise each category is
// scored by how many of its hint keywords appear in the description and raw
// text, and the highest non-zero score wins.
func (r *Refiner) linkCategory(draft *models.ExpenseDraft, rawText string) {
	for _, c := range r.snapshot.Categories {
		if strings.EqualFold(c.Name, draft.Category) {
			draft.Category = c.Name
			draft.CategoryID = c.ID
			return
		}
	}

	sets := make([]textnorm.AliasSet, 0, len(r.snapshot.Categories))
	for _, c := range r.snapshot.Categories {
		sets = append(sets, textnorm.AliasSet{Name: c.Name, Aliases: c.Hints})
	}
	scores := textnorm.ScoreAliases(draft.Description+" "+rawText, sets)

	best, bestScore := "", 0
	for _, c := range r.snapshot.Categories {
		if s := scores[c.Name]; s > bestScore {
			best, bestScore = c.Name, s
		}
	}
	if bestScore == 0 {
		return
	}
	for _, c := range r.snapshot.Categories {
		if c.Name == best {
			draft.Category = c.Name
			draft.CategoryID = c.ID
			return
		}
	}
}

// overrideCurrency re-runs currency detection over everything textual the
// draft carries; when nothing is detected, a valid parser currency is kept,
// else the account default applies.
func (r *Refiner) overrideCurrency(draft *models.ExpenseDraft, rawText string) {
	combined := strings.Join([]string{draft.Description, rawText, draft.Merchant}, " ")
	if code, ok := textnorm.DetectCurrency(combined); ok {
		draft.Currency = code
		return
	}
	if textnorm.ValidCurrency(draft.Currency) {
		return
	}
	draft.Currency = textnorm.NormalizeCurrency(r.defaultCurrency, "USD")
}

// detectPaymentMethod matches name/network/aliases against the raw text and
// commits only when exactly one method matches. Ambiguity leaves the field
// unset rather than guessing.
func (r *Refiner) detectPaymentMethod(rawText, existingID string) string {
	if existingID != "" {
		return existingID
	}

	var matched []string
	for _, pm := range r.snapshot.PaymentMethods {
		aliases := append([]string{pm.Network}, pm.Aliases...)
		set := textnorm.AliasSet{Name: pm.Name, Aliases: aliases}
		if _, ok := textnorm.MatchLongestAlias(rawText, []textnorm.AliasSet{set}); ok {
			matched = append(matched, pm.ID)
		}
	}
	if len(matched) == 1 {
		return matched[0]
	}
	return ""
}

// refineDate re-runs date detection so client-side edits to the raw text
// still shift the date; the recurring-phrase guard applies identically.
func (r *Refiner) refineDate(draft *models.ExpenseDraft, rawText string, capturedAt time.Time) {
	if date, ok := textnorm.DetectDate(rawText, capturedAt); ok {
		draft.ExpenseDate = date
		return
	}
	if draft.ExpenseDate.IsZero() {
		draft.ExpenseDate = time.Date(capturedAt.Year(), capturedAt.Month(), capturedAt.Day(), 0, 0, 0, 0, capturedAt.Location())
	}
}
