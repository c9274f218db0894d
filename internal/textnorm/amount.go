// Package textnorm contains the deterministic token-extraction helpers shared
// by the rule-based parser and the client-side refinement pass: amount and
// currency detection, date phrases, alias matching and description cleanup.
//
// Everything here is regex and lookup-table based on purpose; behavior must
// not depend on host locale.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountRe matches digit runs with optional `.`/`,`/`'` group or fraction
// separators, e.g. "1,000.50", "1.000,50", "1'000.50", "40".
var amountRe = regexp.MustCompile(`\d+(?:[.,']\d+)*`)

// AmountCandidate is one numeric substring found in raw text, already
// normalized to an exact decimal.
type AmountCandidate struct {
	Raw   string
	Value decimal.Decimal
}

// NormalizeAmount converts a single numeric token to a decimal, accepting
// both the `1,000.50` and `1.000,50` conventions plus `'` digit grouping.
func NormalizeAmount(tok string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(tok, "'", "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the later one is the fraction separator.
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",")
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".")
	}

	return decimal.NewFromString(s)
}

// normalizeSingleSeparator decides whether a lone separator kind is grouping
// or fractional. A separator that occurs more than once, or is followed by
// exactly three digits at the end, is grouping ("1.000" is one thousand).
func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.LastIndex(s, sep)
	if len(s)-idx-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}
	if sep == "," {
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}

// AmountCandidates returns every parseable numeric substring in text.
func AmountCandidates(text string) []AmountCandidate {
	var out []AmountCandidate
	for _, raw := range amountRe.FindAllString(text, -1) {
		v, err := NormalizeAmount(raw)
		if err != nil {
			continue
		}
		out = append(out, AmountCandidate{Raw: raw, Value: v})
	}
	return out
}

// LargestAmount picks the numerically largest positive candidate. Preferring
// the largest guards against selecting an incidental small number ("2 beers
// for 150 pesos" must yield 150, not 2).
func LargestAmount(text string) (AmountCandidate, bool) {
	var best AmountCandidate
	found := false
	for _, c := range AmountCandidates(text) {
		if c.Value.Sign() <= 0 {
			continue
		}
		if !found || c.Value.GreaterThan(best.Value) {
			best = c
			found = true
		}
	}
	return best, found
}
