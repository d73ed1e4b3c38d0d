package model

import "time"

// FailureReason classifies why a booking attempt did not produce a
// confirmed reservation.
type FailureReason string

const (
	// ReasonIncompleteIntent means the request was recognized as a
	// booking but required fields were missing or ambiguous.
	ReasonIncompleteIntent FailureReason = "incomplete_intent"

	// ReasonAuthFailure means the admin site rejected the configured
	// credentials.
	ReasonAuthFailure FailureReason = "auth_failure"

	// ReasonAutomationMismatch means an expected UI element was not
	// found or did not behave as expected.
	ReasonAutomationMismatch FailureReason = "automation_mismatch"

	// ReasonTimeout means a booking step exceeded its deadline.
	ReasonTimeout FailureReason = "timeout"

	// ReasonInternalError covers any unexpected collaborator failure.
	ReasonInternalError FailureReason = "internal_error"
)

// BookingRequest is the structured intent extracted from a booking
// email. Immutable once produced; exactly one is created per inbound
// message that classifies as a well-formed booking.
type BookingRequest struct {
	GuestName  string
	GuestEmail string
	RoomType   string
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
}

// Nights returns the length of the stay in nights.
func (r BookingRequest) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// BookingOutcome is the tagged result of one booking attempt.
// Confirmed carries a confirmation reference; otherwise Reason and
// Detail describe the failure.
type BookingOutcome struct {
	Confirmed       bool
	ConfirmationRef string

	Reason FailureReason
	// Detail is a human-readable explanation safe to show the
	// requester. Never an internal error trace.
	Detail string
}

// Confirmed returns a successful outcome with the given reference.
func Confirmed(ref string) BookingOutcome {
	return BookingOutcome{Confirmed: true, ConfirmationRef: ref}
}

// Failed returns a failure outcome with the given reason and detail.
func Failed(reason FailureReason, detail string) BookingOutcome {
	return BookingOutcome{Reason: reason, Detail: detail}
}

// Classification labels how an inbound message was routed.
type Classification string

const (
	ClassificationNotBooking Classification = "not_a_booking"
	ClassificationIncomplete Classification = "incomplete"
	ClassificationParsed     Classification = "parsed"
)

// JournalRecord is one processing-journal row: the audit trail for a
// single handled message. Observational only; the IMAP \Seen flag is
// the idempotency marker.
type JournalRecord struct {
	ID              string         `db:"id"`
	MessageUID      uint32         `db:"message_uid"`
	MessageID       string         `db:"message_id"`
	Sender          string         `db:"sender"`
	Subject         string         `db:"subject"`
	Classification  Classification `db:"classification"`
	OutcomeReason   string         `db:"outcome_reason"`
	ConfirmationRef string         `db:"confirmation_ref"`
	StartedAt       time.Time      `db:"started_at"`
	FinishedAt      time.Time      `db:"finished_at"`
}
