package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// monthNames maps month words (long and short forms) to their number.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	// "22nd March 2026", "22 March"
	dayMonthPattern = regexp.MustCompile(
		`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlternation + `)\b(?:,?\s*(\d{4}))?`)

	// "March 22, 2026", "March 22"
	monthDayPattern = regexp.MustCompile(
		`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s*(\d{4}))?`)

	tomorrowPattern = regexp.MustCompile(`(?i)\btomorrow\b`)
)

const monthAlternation = "january|february|march|april|may|june|july|august|" +
	"september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|" +
	"oct|nov|dec"

// foundDate is a parsed calendar date tagged with its position in the
// text, so the first-mentioned date becomes check-in.
type foundDate struct {
	pos  int
	date time.Time
}

// extractDates finds all calendar dates in the text, in order of
// appearance. Dates written without a year get the current year, or
// the next year if that day has already passed relative to now.
func extractDates(text string, now time.Time) []time.Time {
	var found []foundDate

	for _, m := range isoDatePattern.FindAllStringSubmatchIndex(text, -1) {
		s := text[m[0]:m[1]]
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			continue
		}
		found = append(found, foundDate{pos: m[0], date: d})
	}

	for _, m := range dayMonthPattern.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		month, ok := monthNames[strings.ToLower(text[m[4]:m[5]])]
		if !ok {
			continue
		}
		year := 0
		if m[6] >= 0 {
			year, _ = strconv.Atoi(text[m[6]:m[7]])
		}
		if d, ok := buildDate(year, month, day, now); ok {
			found = append(found, foundDate{pos: m[0], date: d})
		}
	}

	for _, m := range monthDayPattern.FindAllStringSubmatchIndex(text, -1) {
		month, ok := monthNames[strings.ToLower(text[m[2]:m[3]])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(text[m[4]:m[5]])
		year := 0
		if m[6] >= 0 {
			year, _ = strconv.Atoi(text[m[6]:m[7]])
		}
		if d, ok := buildDate(year, month, day, now); ok {
			found = append(found, foundDate{pos: m[0], date: d})
		}
	}

	if m := tomorrowPattern.FindStringIndex(text); m != nil {
		d := now.AddDate(0, 0, 1)
		found = append(found, foundDate{
			pos:  m[0],
			date: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	// The same date can match both natural patterns; deduplicate
	// adjacent positions.
	var dates []time.Time
	seen := make(map[int]bool)
	for _, f := range found {
		if seen[f.pos] {
			continue
		}
		seen[f.pos] = true
		dates = append(dates, f.date)
	}
	return dates
}

// buildDate assembles a date from its components, applying year
// inference: no year means the current year, pushed to the next year
// if the day has already passed.
func buildDate(year int, month time.Month, day int, now time.Time) (time.Time, bool) {
	inferred := year == 0
	if inferred {
		year = now.Year()
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		// Rolled over: the day did not exist in that month.
		return time.Time{}, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if inferred && d.Before(today) {
		d = time.Date(year+1, month, day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day {
			return time.Time{}, false
		}
	}

	return d, true
}

// dateLayouts are the formats accepted when normalizing an
// AI-produced date string.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"January 2, 2006",
	"2 January 2006",
}

// normalizeDate parses a date string in any accepted layout and
// applies year inference for implausible years.
func normalizeDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return ensureYear(d, now), true
	}
	return time.Time{}, false
}

// ensureYear fixes dates whose year is implausible (e.g. a model
// returning year 0001): such dates get the current year, or the next
// one if already past.
func ensureYear(d time.Time, now time.Time) time.Time {
	if d.Year() >= 2020 {
		return d
	}

	fixed := time.Date(now.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if fixed.Before(today) {
		fixed = time.Date(now.Year()+1, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return fixed
}
