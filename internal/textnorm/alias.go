package textnorm

import (
	"regexp"
	"sort"
	"strings"
)

// AliasSet is a named group of user-supplied alias phrases, e.g. a category
// with its hint keywords or a payment method with its nicknames.
type AliasSet struct {
	Name    string
	Aliases []string
}

// aliasPattern compiles a case-insensitive whole-phrase pattern for one
// alias. User strings are escaped so metacharacters cannot break the pattern
// or widen the match. Word-boundary anchors are only added next to word
// characters; `\b` can never match beside punctuation like ")".
func aliasPattern(alias string) (*regexp.Regexp, error) {
	a := strings.TrimSpace(alias)
	pat := `(?i)`
	if startsWithWordChar(a) {
		pat += `\b`
	}
	pat += regexp.QuoteMeta(a)
	if endsWithWordChar(a) {
		pat += `\b`
	}
	return regexp.Compile(pat)
}

func startsWithWordChar(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return isWordRune(r)
}

func endsWithWordChar(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return isWordRune(r[len(r)-1])
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// AliasMatch is a successful alias lookup.
type AliasMatch struct {
	Name  string // set name (category, payment method, ...)
	Alias string // the phrase that fired
}

// MatchLongestAlias finds the alias set whose longest phrase occurs in text.
// Phrases are tried longest-first across all sets so a short keyword inside a
// longer phrase ("bus" in "business lunch") cannot steal the match; ties keep
// set order. Single-token aliases are only consulted after every multi-word
// phrase has been tried.
func MatchLongestAlias(text string, sets []AliasSet) (AliasMatch, bool) {
	type cand struct {
		name  string
		alias string
		order int
	}
	var cands []cand
	for i, s := range sets {
		for _, a := range s.Aliases {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			cands = append(cands, cand{name: s.Name, alias: a, order: i})
		}
		// The set name itself acts as an implicit alias.
		if n := strings.TrimSpace(s.Name); n != "" {
			cands = append(cands, cand{name: s.Name, alias: n, order: i})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		li, lj := len(cands[i].alias), len(cands[j].alias)
		if li != lj {
			return li > lj
		}
		return cands[i].order < cands[j].order
	})

	for _, c := range cands {
		re, err := aliasPattern(c.alias)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return AliasMatch{Name: c.name, Alias: c.alias}, true
		}
	}
	return AliasMatch{}, false
}

// ScoreAliases counts, per set, how many of its alias phrases occur in text.
// Used by the refinement pass to pick the highest-scoring category.
func ScoreAliases(text string, sets []AliasSet) map[string]int {
	scores := make(map[string]int, len(sets))
	for _, s := range sets {
		n := 0
		for _, a := range s.Aliases {
			re, err := aliasPattern(a)
			if err != nil || a == "" {
				continue
			}
			if re.MatchString(text) {
				n++
			}
		}
		if n > 0 {
			scores[s.Name] = n
		}
	}
	return scores
}
