package intent

import (
	"context"
	"strings"
	"time"

	"github.com/nhle/booking-agent/internal/model"
)

// Kind classifies the outcome of extracting booking intent from a
// message body.
type Kind int

const (
	// KindNotABooking means the message carries no booking intent at
	// all. Not an error; the agent skips it silently.
	KindNotABooking Kind = iota

	// KindIncomplete means the message is a booking request but
	// required fields are missing or ambiguous. Terminal for the
	// message; the requester is told what was missing.
	KindIncomplete

	// KindParsed means a well-formed BookingRequest was produced.
	KindParsed
)

// Input is the raw material handed to an extractor: the message body
// plus sender identity used for guest-name fallback.
type Input struct {
	Body        string
	SenderName  string
	SenderEmail string
}

// Result is the tagged outcome of one extraction. Exactly one of
// MissingFields (KindIncomplete) or Request (KindParsed) is populated.
type Result struct {
	Kind          Kind
	MissingFields []string
	Request       model.BookingRequest
}

// Extractor converts free-form message text into structured booking
// intent. Implementations must be stable: the same input classifies
// the same way on every call.
type Extractor interface {
	Extract(ctx context.Context, in Input) (Result, error)
}

// bookingKeywords are the signals that a message is attempting a
// booking at all. A body containing none of them is not a booking.
var bookingKeywords = []string{
	"book", "booking", "reservation", "reserve", "room", "stay",
	"check-in", "check in", "checkin", "night",
}

// hasBookingIntent reports whether the text looks like a booking
// attempt.
func hasBookingIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// fields holds raw extracted values before validation. Zero times and
// empty strings mean the field was not found.
type fields struct {
	GuestName string
	RoomType  string
	CheckIn   time.Time
	CheckOut  time.Time
	Adults    int
	Children  int
}

// classify validates raw fields against the booking invariants and
// produces the final Result. Shared by the rules and AI paths so both
// apply the same defaults and the same notion of "incomplete".
func classify(f fields, in Input) Result {
	var missing []string
	if f.CheckIn.IsZero() {
		missing = append(missing, "check-in date")
	}
	if f.CheckOut.IsZero() {
		missing = append(missing, "check-out date")
	}
	if f.RoomType == "" {
		missing = append(missing, "room type")
	}

	// Check-in must strictly precede check-out; a reversed or equal
	// pair is treated as an ambiguous check-out date.
	if !f.CheckIn.IsZero() && !f.CheckOut.IsZero() && !f.CheckIn.Before(f.CheckOut) {
		missing = append(missing, "a check-out date after the check-in date")
	}

	if len(missing) > 0 {
		return Result{Kind: KindIncomplete, MissingFields: missing}
	}

	guestName := f.GuestName
	if guestName == "" {
		guestName = in.SenderName
	}
	if guestName == "" {
		if at := strings.Index(in.SenderEmail, "@"); at > 0 {
			guestName = in.SenderEmail[:at]
		} else {
			guestName = in.SenderEmail
		}
	}

	adults := f.Adults
	if adults < 1 {
		adults = 1
	}
	children := f.Children
	if children < 0 {
		children = 0
	}

	return Result{
		Kind: KindParsed,
		Request: model.BookingRequest{
			GuestName:  guestName,
			GuestEmail: in.SenderEmail,
			RoomType:   f.RoomType,
			CheckIn:    f.CheckIn,
			CheckOut:   f.CheckOut,
			Adults:     adults,
			Children:   children,
		},
	}
}

// Composite tries the AI extractor first and falls back to the rules
// extractor when the AI backend is unavailable or errors. With no AI
// configured it is just the rules extractor.
type Composite struct {
	ai    Extractor
	rules Extractor
}

// NewComposite builds the production extractor. ai may be nil.
func NewComposite(ai, rules Extractor) *Composite {
	return &Composite{ai: ai, rules: rules}
}

// Extract runs the AI path when available, falling back to rules on
// any AI error. Rules errors are final.
func (c *Composite) Extract(ctx context.Context, in Input) (Result, error) {
	if c.ai != nil {
		res, err := c.ai.Extract(ctx, in)
		if err == nil {
			return res, nil
		}
	}
	return c.rules.Extract(ctx, in)
}
