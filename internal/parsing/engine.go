package parsing

import (
	"context"
	"strings"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
	"github.com/aguerraochoa/Speakance-sub000/internal/textnorm"
)

// Engine is the hybrid extractor: an optional AI provider fronted by the
// deterministic rule engine. Both paths yield a Draft plus confidence.
type Engine struct {
	provider Provider // nil means rules only
	cfg      ScoreConfig
	log      logging.Logger
}

func NewEngine(provider Provider, cfg ScoreConfig, log logging.Logger) *Engine {
	return &Engine{provider: provider, cfg: cfg, log: log}
}

// Parse extracts a draft from req. The AI provider is tried first; a provider
// error or a draft failing basic sanity checks (no positive amount) falls
// back to the rule engine. Parse itself never fails: the rules always answer.
func (e *Engine) Parse(ctx context.Context, req Request) Result {
	if e.provider != nil {
		draft, err := e.provider.Extract(ctx, req)
		if err == nil && draft.Amount.Sign() > 0 {
			e.normalize(draft, req)
			return Result{Draft: *draft, Confidence: e.score(*draft, req)}
		}
		if err != nil {
			e.log.Warn(ctx, "ai extraction failed, using rules", "error", err)
		} else {
			e.log.Warn(ctx, "ai draft failed sanity check, using rules")
		}
	}

	draft, sig := ruleExtract(req, e.cfg)
	return Result{Draft: draft, Confidence: e.cfg.Score(sig), FromRules: true}
}

// normalize snaps an AI draft onto the caller's vocabulary: a category
// outside the known set becomes the default, the currency is validated
// against hint and default.
func (e *Engine) normalize(d *Draft, req Request) {
	if len(req.Categories) > 0 && !knownCategory(d.Category, req.Categories) {
		d.Category = common.DefaultCategoryName
	}
	fallback := textnorm.NormalizeCurrency(req.CurrencyHint, textnorm.NormalizeCurrency(req.DefaultCurrency, "USD"))
	d.Currency = textnorm.NormalizeCurrency(d.Currency, fallback)
	if d.ExpenseDate.IsZero() {
		d.ExpenseDate = req.CapturedAt
	}
}

func knownCategory(name string, sets []textnorm.AliasSet) bool {
	for _, s := range sets {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// score grades an AI draft with the same signal weights the rule path uses,
// so the confidence gate treats both paths identically.
func (e *Engine) score(d Draft, req Request) float64 {
	_, explicitCurrency := textnorm.DetectCurrency(req.RawText)
	return e.cfg.Score(signals{
		amountFound:       d.Amount.Sign() > 0,
		categoryResolved:  d.Category != "" && !strings.EqualFold(d.Category, common.DefaultCategoryName),
		categoryViaAlias:  categoryAliasInText(req.RawText, d.Category, req.Categories),
		explicitCurrency:  explicitCurrency,
		sufficientTokens:  len(textnorm.Tokenize(req.RawText)) >= e.cfg.MinTokens,
		usableDescription: !textnorm.LooksRaw(d.Description, req.RawText),
	})
}

func categoryAliasInText(text, category string, sets []textnorm.AliasSet) bool {
	m, ok := textnorm.MatchLongestAlias(text, sets)
	return ok && strings.EqualFold(m.Name, category)
}
