package textnorm

import (
	"regexp"
	"strings"
)

// fillerWords are capture verbs, articles and connectives that carry no
// descriptive value. English and Spanish, since captures arrive in both.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "we": true, "my": true,
	"spent": true, "paid": true, "bought": true, "got": true, "had": true,
	"on": true, "for": true, "of": true, "in": true, "at": true, "to": true,
	"and": true, "with": true, "some": true, "just": true, "about": true,
	"today": true, "yesterday": true, "tomorrow": true, "tonight": true,
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"de": true, "en": true, "por": true, "para": true, "con": true, "y": true,
	"gaste": true, "gasté": true, "pague": true, "pagué": true, "compre": true,
	"compré": true, "hoy": true, "ayer": true, "mañana": true,
	// Social cues are carried by composition ("with friends"), not leftovers.
	"friend": true, "friends": true, "amigo": true, "amigos": true,
	"amiga": true, "amigas": true,
}

var (
	// The keyword matches either case but the merchant itself must be a
	// proper noun, so (?i) is scoped to the keyword group only.
	merchantAtRe   = regexp.MustCompile(`\b(?i:at|en)\s+([A-ZÁÉÍÓÚÑ][\w'&.-]*(?:\s+[A-ZÁÉÍÓÚÑ][\w'&.-]*)*)`)
	merchantFromRe = regexp.MustCompile(`\b(?i:from|de)\s+([A-ZÁÉÍÓÚÑ][\w'&.-]*(?:\s+[A-ZÁÉÍÓÚÑ][\w'&.-]*)*)`)
	socialRe       = regexp.MustCompile(`(?i)\b(friends?|amigos?|amigas?|coworkers?|colleagues?)\b`)
	wordRe         = regexp.MustCompile(`[\p{L}\p{N}'&.-]+`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// Tokenize lower-cases text and splits it into word tokens.
func Tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// DetectMerchant finds a proper-noun merchant introduced by "at"/"en" or
// "from"/"de". The at-form wins when both appear.
func DetectMerchant(text string) (string, bool) {
	if m := merchantAtRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := merchantFromRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// HasSocialCue reports whether the text mentions company ("with friends").
func HasSocialCue(text string) bool {
	return socialRe.MatchString(text)
}

// StripPhrases removes each phrase from text case-insensitively. Phrases are
// escaped before compilation: they originate from user-supplied aliases and
// matched raw substrings.
func StripPhrases(text string, phrases []string) string {
	out := text
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
		if err != nil {
			continue
		}
		out = re.ReplaceAllString(out, " ")
	}
	return CollapseSpaces(out)
}

// StripFiller drops filler/verb tokens and returns the remainder joined by
// single spaces.
func StripFiller(text string) string {
	var kept []string
	for _, tok := range Tokenize(text) {
		if fillerWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// CollapseSpaces trims and squeezes runs of whitespace.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// LooksRaw reports whether a candidate description is still unusable: empty,
// a single short token, filler-only, or byte-identical to the original input.
func LooksRaw(desc, original string) bool {
	d := CollapseSpaces(desc)
	if d == "" {
		return true
	}
	if strings.EqualFold(d, CollapseSpaces(original)) {
		return true
	}
	toks := Tokenize(d)
	if len(toks) == 0 {
		return true
	}
	if len(toks) == 1 && len(toks[0]) <= 3 {
		return true
	}
	for _, t := range toks {
		if !fillerWords[t] {
			return false
		}
	}
	return true
}

// TitleCase upper-cases the first letter of each word. Used when composing a
// canonical description from category and merchant.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
