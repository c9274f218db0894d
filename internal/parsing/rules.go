package parsing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/textnorm"
)

// sentinelAmount stands in when no positive amount can be found. The draft
// still round-trips and the score penalty routes it to review.
var sentinelAmount = decimal.NewFromInt(1)

// ruleExtract is the deterministic fallback engine. It always succeeds and
// produces the same Draft shape as the AI path.
func ruleExtract(req Request, cfg ScoreConfig) (Draft, signals) {
	raw := req.RawText
	var sig signals

	// 1. Amount: largest positive numeric candidate.
	amount := sentinelAmount
	var amountRaw string
	if c, ok := textnorm.LargestAmount(raw); ok {
		amount = c.Value
		amountRaw = c.Raw
		sig.amountFound = true
	}

	// 2. Currency: explicit word/symbol, then caller hint, then default.
	currency := ""
	if code, ok := textnorm.DetectCurrency(raw); ok {
		currency = code
		sig.explicitCurrency = true
	} else if c := textnorm.NormalizeCurrency(req.CurrencyHint, ""); c != "" {
		currency = c
	} else {
		currency = textnorm.NormalizeCurrency(req.DefaultCurrency, "USD")
	}

	// 3. Category: longest alias phrase wins, unmatched text is "Other".
	category := common.DefaultCategoryName
	var matchedAlias string
	if m, ok := textnorm.MatchLongestAlias(raw, req.Categories); ok {
		category = m.Name
		matchedAlias = m.Alias
		sig.categoryResolved = true
		sig.categoryViaAlias = true
	}

	// 4. Date: relative keywords and absolute phrases, recurring guard inside.
	expenseDate, _ := textnorm.DetectDate(raw, req.CapturedAt)

	// 5. Description and merchant.
	merchant, _ := textnorm.DetectMerchant(raw)

	strip := []string{amountRaw, matchedAlias, merchant}
	strip = append(strip, textnorm.CurrencyTokens(raw)...)
	leftover := textnorm.StripFiller(textnorm.StripPhrases(raw, strip))

	description := leftover
	if textnorm.LooksRaw(leftover, raw) {
		description = composeDescription(category, merchant, textnorm.HasSocialCue(raw))
	}
	if description != "" {
		sig.usableDescription = true
	}

	sig.sufficientTokens = len(textnorm.Tokenize(raw)) >= cfg.MinTokens

	return Draft{
		Amount:      amount,
		Currency:    currency,
		Category:    category,
		Description: description,
		Merchant:    merchant,
		ExpenseDate: expenseDate,
	}, sig
}

// composeDescription builds a canonical phrase when the raw leftover is
// unusable, e.g. "Food at La Esquina with friends".
func composeDescription(category, merchant string, social bool) string {
	desc := textnorm.TitleCase(category)
	if merchant != "" {
		desc = fmt.Sprintf("%s at %s", desc, merchant)
	}
	if social {
		desc += " with friends"
	}
	return desc
}
