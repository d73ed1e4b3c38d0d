package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractDatesISO(t *testing.T) {
	dates := extractDates("from 2026-03-22 to 2026-03-25", testNow)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2026, time.March, 22), dates[0])
	assert.Equal(t, date(2026, time.March, 25), dates[1])
}

func TestExtractDatesNaturalMonthDay(t *testing.T) {
	dates := extractDates(
		"Book a room from March 22, 2026 to March 25, 2026", testNow)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2026, time.March, 22), dates[0])
	assert.Equal(t, date(2026, time.March, 25), dates[1])
}

func TestExtractDatesDayMonthOrdinals(t *testing.T) {
	dates := extractDates("arriving 22nd March, leaving 25th March", testNow)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2026, time.March, 22), dates[0])
	assert.Equal(t, date(2026, time.March, 25), dates[1])
}

func TestExtractDatesInfersCurrentYear(t *testing.T) {
	dates := extractDates("check in on June 5", testNow)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2026, time.June, 5), dates[0])
}

func TestExtractDatesPastDateRollsToNextYear(t *testing.T) {
	// January 2 has already passed relative to January 15.
	dates := extractDates("check in on January 2", testNow)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2027, time.January, 2), dates[0])
}

func TestExtractDatesExplicitYearNotAdjusted(t *testing.T) {
	dates := extractDates("check in on January 2, 2026", testNow)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2026, time.January, 2), dates[0])
}

func TestExtractDatesTomorrow(t *testing.T) {
	dates := extractDates("I'd like a room for tomorrow", testNow)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2026, time.January, 16), dates[0])
}

func TestExtractDatesRejectsImpossibleDay(t *testing.T) {
	dates := extractDates("arriving 31 February", testNow)
	assert.Empty(t, dates)
}

func TestExtractDatesOrderFollowsAppearance(t *testing.T) {
	dates := extractDates(
		"check out 2026-03-25 after checking in 2026-03-22", testNow)
	require.Len(t, dates, 2)
	// First mentioned wins, regardless of chronology.
	assert.Equal(t, date(2026, time.March, 25), dates[0])
}

func TestNormalizeDateLayouts(t *testing.T) {
	for _, input := range []string{
		"2026-03-22",
		"March 22, 2026",
		"22 March 2026",
	} {
		d, ok := normalizeDate(input, testNow)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, date(2026, time.March, 22), d, "input %q", input)
	}
}

func TestNormalizeDateRejectsGarbage(t *testing.T) {
	_, ok := normalizeDate("sometime soon", testNow)
	assert.False(t, ok)

	_, ok = normalizeDate("", testNow)
	assert.False(t, ok)
}

func TestEnsureYearFixesImplausibleYear(t *testing.T) {
	// Year 0001 from a confused model becomes the current year.
	d := ensureYear(date(1, time.June, 5), testNow)
	assert.Equal(t, date(2026, time.June, 5), d)

	// Already-past days land in the next year.
	d = ensureYear(date(1, time.January, 2), testNow)
	assert.Equal(t, date(2027, time.January, 2), d)
}
