package textnorm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// captured is a Wednesday.
var captured = time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)

func TestDetectDateRelative(t *testing.T) {
	d, ok := DetectDate("coffee yesterday", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), d)

	d, ok = DetectDate("dentist tomorrow 80", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), d)

	d, ok = DetectDate("lunch today", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), d)
}

func TestDetectDateWeekdayResolvesBackward(t *testing.T) {
	d, ok := DetectDate("poker on Tuesday $40", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), d)
}

func TestRecurringPhraseDoesNotShiftDate(t *testing.T) {
	text := "every Tuesday poker night, $40"
	require.True(t, HasRecurringPhrase(text))

	d, ok := DetectDate(text, captured)
	require.False(t, ok)
	require.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), d)
}

func TestRecurringPluralWeekday(t *testing.T) {
	require.True(t, HasRecurringPhrase("gym tuesdays 20"))
	require.True(t, HasRecurringPhrase("weekly cleaning monday"))
	require.False(t, HasRecurringPhrase("gym on tuesday 20"))
}

func TestDetectDateAbsoluteForms(t *testing.T) {
	d, ok := DetectDate("hotel 2026-08-01 for 3000", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), d)

	d, ok = DetectDate("flight on Aug 3", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), d)

	d, ok = DetectDate("tickets January 2, 2027", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC), d)

	d, ok = DetectDate("parking 8/20", captured)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), d)
}

func TestDetectDateNoneKeepsCaptureDate(t *testing.T) {
	d, ok := DetectDate("tacos 120 pesos", captured)
	require.False(t, ok)
	require.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), d)
}
