package intent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRules() *RulesExtractor {
	return NewRulesExtractorAt(func() time.Time { return testNow })
}

func testInput(body string) Input {
	return Input{
		Body:        body,
		SenderName:  "Alice Smith",
		SenderEmail: "alice@example.com",
	}
}

func TestRulesExtractFullBooking(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Book a Deluxe room from March 22, 2026 to March 25, 2026 "+
			"for 2 adults. My name is Alice."))
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)

	req := res.Request
	assert.Equal(t, "Alice", req.GuestName)
	assert.Equal(t, "alice@example.com", req.GuestEmail)
	assert.Equal(t, "Deluxe Room", req.RoomType)
	assert.Equal(t, date(2026, time.March, 22), req.CheckIn)
	assert.Equal(t, date(2026, time.March, 25), req.CheckOut)
	assert.Equal(t, 2, req.Adults)
	assert.Equal(t, 0, req.Children)
}

func TestRulesExtractNotABooking(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Hi, just wanted to say thanks for the great service last week!"))
	require.NoError(t, err)
	assert.Equal(t, KindNotABooking, res.Kind)
}

func TestRulesExtractMissingDates(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"I would like to book a Suite for 2 adults and one child."))
	require.NoError(t, err)
	require.Equal(t, KindIncomplete, res.Kind)
	assert.Contains(t, res.MissingFields, "check-in date")
	assert.Contains(t, res.MissingFields, "check-out date")
	assert.NotContains(t, res.MissingFields, "room type")
}

func TestRulesExtractMissingRoomType(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Please book from 2026-03-22 to 2026-03-25 for my stay."))
	require.NoError(t, err)
	require.Equal(t, KindIncomplete, res.Kind)
	assert.Equal(t, []string{"room type"}, res.MissingFields)
}

func TestRulesExtractReversedDatesIncomplete(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Book a Deluxe room from 2026-03-25 to 2026-03-22."))
	require.NoError(t, err)
	require.Equal(t, KindIncomplete, res.Kind)
	assert.Contains(t, res.MissingFields,
		"a check-out date after the check-in date")
}

func TestRulesExtractWordNumbers(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Book a Family suite from 2026-07-01 to 2026-07-08 for "+
			"two adults and three children."))
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, "Family Suite", res.Request.RoomType)
	assert.Equal(t, 2, res.Request.Adults)
	assert.Equal(t, 3, res.Request.Children)
}

func TestRulesExtractAdultsDefaultToOne(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Book a Deluxe room from 2026-03-22 to 2026-03-25."))
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, 1, res.Request.Adults)
	assert.Equal(t, 0, res.Request.Children)
}

func TestRulesExtractGuestNameFallsBackToSender(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), testInput(
		"Book a Deluxe room from 2026-03-22 to 2026-03-25 for 2 adults."))
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, "Alice Smith", res.Request.GuestName)
}

func TestRulesExtractGuestNameFallsBackToEmailLocalPart(t *testing.T) {
	e := newTestRules()

	res, err := e.Extract(context.Background(), Input{
		Body:        "Book a Deluxe room from 2026-03-22 to 2026-03-25.",
		SenderEmail: "bob@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, "bob", res.Request.GuestName)
}

func TestRulesExtractRoomSynonyms(t *testing.T) {
	cases := map[string]string{
		"a sea view room":          "Deluxe Sea View Room",
		"the presidential suite":   "Presidential Suite",
		"a standard room please":   "Executive Room",
		"one premium suite":        "Premium Suite",
		"a double room":            "Deluxe Room",
		"your best suite":          "Premium Suite",
		"a deluxe sea view room":   "Deluxe Sea View Room",
		"somewhere near the beach": "Deluxe Sea View Room",
	}

	for body, want := range cases {
		assert.Equal(t, want, extractRoomType(body), "body %q", body)
	}
}

func TestRulesExtractIsStable(t *testing.T) {
	e := newTestRules()
	in := testInput(
		"Book a Deluxe room from March 22, 2026 to March 25, 2026 " +
			"for 2 adults. My name is Alice.")

	first, err := e.Extract(context.Background(), in)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Extract(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
