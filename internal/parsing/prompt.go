package parsing

import (
	"fmt"
	"strings"
)

// buildPrompt composes the instruction both providers send. The category list
// is embedded so the model can only answer with names the caller knows.
func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Extract one expense from the text below. Capture timestamp: %s.\n",
		req.CapturedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("Respond with a single JSON object and nothing else, with exactly these keys:\n")
	b.WriteString(`{"amount": "<decimal as string>", "currency": "<ISO 4217>", "category": "<one of the allowed categories>", "description": "<short phrase>", "merchant": "<merchant name or empty>", "expense_date": "<YYYY-MM-DD or empty>"}` + "\n")

	if len(req.Categories) > 0 {
		names := make([]string, 0, len(req.Categories))
		for _, c := range req.Categories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&b, "Allowed categories: %s.\n", strings.Join(names, ", "))
	}
	if req.CurrencyHint != "" {
		fmt.Fprintf(&b, "If no currency is stated, assume %s.\n", req.CurrencyHint)
	} else if req.DefaultCurrency != "" {
		fmt.Fprintf(&b, "If no currency is stated, assume %s.\n", req.DefaultCurrency)
	}
	if req.LanguageHint != "" {
		fmt.Fprintf(&b, "The text is likely in language %q.\n", req.LanguageHint)
	}
	b.WriteString("Phrases like \"every Tuesday\" describe a recurring pattern, not a date; leave expense_date empty for them.\n")

	fmt.Fprintf(&b, "\nText: %s\n", req.RawText)
	return b.String()
}

// extractJSON pulls the outermost JSON object out of a model reply that may
// be wrapped in markdown fences or prose.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
