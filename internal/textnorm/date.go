package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
	"domingo":  time.Sunday, "lunes": time.Monday, "martes": time.Tuesday,
	"miercoles": time.Wednesday, "miércoles": time.Wednesday, "jueves": time.Thursday,
	"viernes": time.Friday, "sabado": time.Saturday, "sábado": time.Saturday,
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January, "enero": time.January,
	"feb": time.February, "february": time.February, "febrero": time.February,
	"mar": time.March, "march": time.March, "marzo": time.March,
	"apr": time.April, "april": time.April, "abril": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "june": time.June, "junio": time.June,
	"jul": time.July, "july": time.July, "julio": time.July,
	"aug": time.August, "august": time.August, "agosto": time.August,
	"sep": time.September, "september": time.September, "septiembre": time.September,
	"oct": time.October, "october": time.October, "octubre": time.October,
	"nov": time.November, "november": time.November, "noviembre": time.November,
	"dec": time.December, "december": time.December, "diciembre": time.December,
}

var (
	recurringRe = regexp.MustCompile(`(?i)\b(every|each|cada|weekly|biweekly|monthly)\b|\b(sundays|mondays|tuesdays|wednesdays|thursdays|fridays|saturdays)\b`)

	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayRe    = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?|enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\.?\s+(\d{1,2})(?:\s*,?\s*(\d{4}))?\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	weekdayRe     = regexp.MustCompile(`(?i)\b(sunday|monday|tuesday|wednesday|thursday|friday|saturday|domingo|lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado)\b`)
)

// HasRecurringPhrase reports whether text describes a repeating pattern
// ("every Tuesday", "weekly", "tuesdays") rather than a specific occurrence.
// Recurring phrasing must never shift the expense date.
func HasRecurringPhrase(text string) bool {
	return recurringRe.MatchString(text)
}

// dateOnly truncates t to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DetectDate extracts an expense date from text relative to the capture
// moment. Relative keywords shift from the capture date; month-day, numeric
// (month-first) and ISO forms resolve absolutely; a bare weekday resolves to
// its most recent occurrence on or before the capture date. Recurring
// phrasing disables weekday resolution. The second result is false when no
// date phrase was found.
func DetectDate(text string, captured time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)
	base := dateOnly(captured)

	switch {
	case strings.Contains(lower, "yesterday") || strings.Contains(lower, "ayer"):
		return base.AddDate(0, 0, -1), true
	case strings.Contains(lower, "tomorrow") || strings.Contains(lower, "mañana") || strings.Contains(lower, "manana"):
		return base.AddDate(0, 0, 1), true
	case strings.Contains(lower, "today") || strings.Contains(lower, "hoy") || strings.Contains(lower, "tonight") || strings.Contains(lower, "anoche"):
		if strings.Contains(lower, "anoche") {
			return base.AddDate(0, 0, -1), true
		}
		return base, true
	}

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, captured.Location()), true
		}
	}

	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		mo, ok := monthNames[strings.ToLower(strings.TrimSuffix(m[1], "."))]
		if ok {
			d, _ := strconv.Atoi(m[2])
			y := captured.Year()
			if m[3] != "" {
				y, _ = strconv.Atoi(m[3])
			}
			if d >= 1 && d <= 31 {
				return time.Date(y, mo, d, 0, 0, 0, 0, captured.Location()), true
			}
		}
	}

	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		// Ambiguous d/m numerics read month-first.
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			y := captured.Year()
			if m[3] != "" {
				y, _ = strconv.Atoi(m[3])
				if y < 100 {
					y += 2000
				}
			}
			return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, captured.Location()), true
		}
	}

	if !HasRecurringPhrase(text) {
		if m := weekdayRe.FindStringSubmatch(lower); m != nil {
			if wd, ok := weekdayNames[m[1]]; ok {
				diff := int(base.Weekday() - wd)
				if diff < 0 {
					diff += 7
				}
				return base.AddDate(0, 0, -diff), true
			}
		}
	}

	return base, false
}
