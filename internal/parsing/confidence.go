package parsing

// ScoreConfig holds the confidence weighting constants. The values are
// product-tuned; ship defaults come from DefaultScoreConfig and callers may
// override individual weights, but nothing here is inlined at use sites.
type ScoreConfig struct {
	Base float64

	AmountPresent      float64 // a positive, plausible amount was found
	CategoryResolved   float64 // category is something other than the default
	CategoryViaAlias   float64 // category resolved through an explicit keyword
	ExplicitCurrency   float64 // currency detected from the text itself
	SufficientTokens   float64 // input long enough to carry real signal
	UsableDescription  float64 // resulting description is non-trivial

	MissingAmountPenalty      float64
	UnresolvedCategoryPenalty float64
	DefaultCurrencyPenalty    float64

	Min float64
	Max float64

	// MinTokens is the token count at which SufficientTokens applies.
	MinTokens int
}

// DefaultScoreConfig returns the tuned production weights.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Base: 0.70,

		AmountPresent:     0.10,
		CategoryResolved:  0.05,
		CategoryViaAlias:  0.04,
		ExplicitCurrency:  0.05,
		SufficientTokens:  0.03,
		UsableDescription: 0.03,

		MissingAmountPenalty:      0.20,
		UnresolvedCategoryPenalty: 0.05,
		DefaultCurrencyPenalty:    0.05,

		Min: 0.40,
		Max: 0.99,

		MinTokens: 3,
	}
}

// signals captures what the extraction actually established; Score folds them
// into a confidence value.
type signals struct {
	amountFound       bool
	categoryResolved  bool
	categoryViaAlias  bool
	explicitCurrency  bool
	sufficientTokens  bool
	usableDescription bool
}

// Score folds extraction signals into a confidence in [Min, Max].
func (c ScoreConfig) Score(s signals) float64 {
	v := c.Base

	if s.amountFound {
		v += c.AmountPresent
	} else {
		v -= c.MissingAmountPenalty
	}
	if s.categoryResolved {
		v += c.CategoryResolved
	} else {
		v -= c.UnresolvedCategoryPenalty
	}
	if s.categoryViaAlias {
		v += c.CategoryViaAlias
	}
	if s.explicitCurrency {
		v += c.ExplicitCurrency
	} else {
		v -= c.DefaultCurrencyPenalty
	}
	if s.sufficientTokens {
		v += c.SufficientTokens
	}
	if s.usableDescription {
		v += c.UsableDescription
	}

	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}
