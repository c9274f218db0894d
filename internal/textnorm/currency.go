package textnorm

import (
	"regexp"
	"strings"
)

// currencyRule is one detection rule: a compiled phrase pattern and the ISO
// code it implies.
type currencyRule struct {
	re   *regexp.Regexp
	code string
}

// currencyRules is checked in priority order. Specific currency words come
// before the dollar/$ catch-all so "pesos" never resolves to USD just because
// the text also carries "$".
var currencyRules = []currencyRule{
	{regexp.MustCompile(`(?i)\bpesos?\b|\bmxn\b`), "MXN"},
	{regexp.MustCompile(`(?i)\beuros?\b|\beur\b|€`), "EUR"},
	{regexp.MustCompile(`(?i)\bpounds?\b|\bquid\b|\bgbp\b|£`), "GBP"},
	{regexp.MustCompile(`(?i)\byen\b|\bjpy\b|¥`), "JPY"},
	{regexp.MustCompile(`(?i)\breal\b|\breais\b|\bbrl\b`), "BRL"},
	{regexp.MustCompile(`(?i)\bdollars?\b|\bbucks?\b|\busd\b|\$`), "USD"},
}

// DetectCurrency scans text for an explicit currency word or symbol and
// returns the ISO code of the first rule that fires.
func DetectCurrency(text string) (string, bool) {
	for _, r := range currencyRules {
		if r.re.MatchString(text) {
			return r.code, true
		}
	}
	return "", false
}

// ValidCurrency reports whether code looks like an ISO 4217 alpha code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CurrencyTokens returns the substrings of text matched by currency rules,
// so the description pass can strip them.
func CurrencyTokens(text string) []string {
	var out []string
	for _, r := range currencyRules {
		out = append(out, r.re.FindAllString(text, -1)...)
	}
	return out
}

// NormalizeCurrency upper-cases and trims a currency code, returning fallback
// if the result is not a plausible ISO code.
func NormalizeCurrency(code, fallback string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if ValidCurrency(c) {
		return c
	}
	return fallback
}
