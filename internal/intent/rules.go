package intent

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RulesExtractor is the deterministic fallback extractor: pattern
// matching over the message body, no network. It backs the AI path and
// keeps the agent functional with no API key configured.
type RulesExtractor struct {
	// now is injectable for deterministic date inference in tests.
	now func() time.Time
}

// NewRulesExtractor creates a rules extractor using the wall clock.
func NewRulesExtractor() *RulesExtractor {
	return &RulesExtractor{now: time.Now}
}

// NewRulesExtractorAt creates a rules extractor with a fixed notion of
// "now", used in tests.
func NewRulesExtractorAt(now func() time.Time) *RulesExtractor {
	return &RulesExtractor{now: now}
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is ([A-Z][a-z]+(?: [A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?i)(?:booking for|guest(?:\s*name)?[:\s]+)([A-Z][a-z]+(?: [A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?im)^(?:Hi|Hello|Dear)[,\s]+(?:I am|I'm)\s+([A-Z][a-z]+(?: [A-Z][a-z]+)*)`),
}

// roomTypeSynonyms maps free-text room words to the catalog names the
// admin UI uses. Longer keys are matched first so "premium suite" wins
// over "suite".
var roomTypeSynonyms = map[string]string{
	"deluxe sea view room": "Deluxe Sea View Room",
	"presidential suite":   "Presidential Suite",
	"premium suite":        "Premium Suite",
	"executive room":       "Executive Room",
	"family suite":         "Family Suite",
	"deluxe room":          "Deluxe Room",
	"presidential":         "Presidential Suite",
	"executive":            "Executive Room",
	"sea view":             "Deluxe Sea View Room",
	"standard":             "Executive Room",
	"premium":              "Premium Suite",
	"family":               "Family Suite",
	"deluxe":               "Deluxe Room",
	"double":               "Deluxe Room",
	"beach":                "Deluxe Sea View Room",
	"suite":                "Premium Suite",
}

// roomSynonymsByLength holds the synonym keys sorted longest-first.
var roomSynonymsByLength = func() []string {
	keys := make([]string, 0, len(roomTypeSynonyms))
	for k := range roomTypeSynonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

const numberAlternation = "one|two|three|four|five|six|seven|eight|nine|ten"

var (
	adultsBefore   = regexp.MustCompile(`(?i)\b(\d+|` + numberAlternation + `)\s+adults?\b`)
	adultsAfter    = regexp.MustCompile(`(?i)\badults?[:\s]+(\d+)`)
	childrenBefore = regexp.MustCompile(`(?i)\b(\d+|` + numberAlternation + `)\s+(?:child(?:ren)?|kids?)\b`)
	childrenAfter  = regexp.MustCompile(`(?i)\b(?:child(?:ren)?|kids?)[:\s]+(\d+)`)
)

// Extract classifies the message body using pattern matching alone.
// It never returns an error.
func (e *RulesExtractor) Extract(_ context.Context, in Input) (Result, error) {
	if !hasBookingIntent(in.Body) {
		return Result{Kind: KindNotABooking}, nil
	}

	now := e.now()

	f := fields{
		GuestName: extractName(in.Body),
		RoomType:  extractRoomType(in.Body),
		Adults:    extractCount(in.Body, adultsBefore, adultsAfter),
		Children:  extractCount(in.Body, childrenBefore, childrenAfter),
	}

	dates := extractDates(in.Body, now)
	if len(dates) > 0 {
		f.CheckIn = dates[0]
	}
	if len(dates) > 1 {
		f.CheckOut = dates[1]
	}

	return classify(f, in), nil
}

// extractName finds a guest name via the known phrasings, or "".
func extractName(text string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractRoomType finds the first room-type synonym in the text,
// longest synonyms first, and returns its catalog name.
func extractRoomType(text string) string {
	lower := strings.ToLower(text)
	for _, key := range roomSynonymsByLength {
		if strings.Contains(lower, key) {
			return roomTypeSynonyms[key]
		}
	}
	return ""
}

// extractCount finds an occupancy count written before ("2 adults",
// "two adults") or after ("adults: 2") the keyword. Returns 0 when
// absent; defaults are applied at classification.
func extractCount(text string, before, after *regexp.Regexp) int {
	if m := before.FindStringSubmatch(text); m != nil {
		val := strings.ToLower(m[1])
		if n, ok := wordNumbers[val]; ok {
			return n
		}
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	if m := after.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
