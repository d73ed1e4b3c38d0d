package agent

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/nhle/booking-agent/internal/booker"
	"github.com/nhle/booking-agent/internal/intent"
	"github.com/nhle/booking-agent/internal/mailbox"
	"github.com/nhle/booking-agent/internal/model"
	"github.com/nhle/booking-agent/internal/notify"
	"github.com/nhle/booking-agent/internal/store"
)

// internalErrorDetail is the only text a requester ever sees for an
// unexpected failure. Raw error traces stay in the log.
const internalErrorDetail = "We could not process your booking request " +
	"due to an unexpected error. Please try again later."

// Options configures the orchestration loop.
type Options struct {
	// SubjectFilter is the substring (case-insensitive) a subject must
	// contain for the message to be considered at all.
	SubjectFilter string

	// PollInterval is the pause between mailbox checks.
	PollInterval time.Duration
}

// Agent is the orchestrator: a single-threaded poll loop that turns
// each unseen booking email into at most one booking attempt and
// exactly one outbound notification. Messages are processed one at a
// time because the booking executor drives a single shared admin UI
// session; two concurrent form fills would race.
type Agent struct {
	reader    mailbox.Reader
	extractor intent.Extractor
	executor  booker.Executor
	notifier  notify.Notifier
	journal   store.Store
	clock     Clock
	opts      Options
	logger    *log.Logger
}

// New creates an agent. journal may be nil to disable the processing
// journal; every other collaborator is required.
func New(
	reader mailbox.Reader,
	extractor intent.Extractor,
	executor booker.Executor,
	notifier notify.Notifier,
	journal store.Store,
	clock Clock,
	opts Options,
) *Agent {
	if clock == nil {
		clock = SystemClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}

	return &Agent{
		reader:    reader,
		extractor: extractor,
		executor:  executor,
		notifier:  notifier,
		journal:   journal,
		clock:     clock,
		opts:      opts,
		logger:    log.Default(),
	}
}

// SetLogger overrides the destination for operational log entries.
func (a *Agent) SetLogger(l *log.Logger) {
	if l != nil {
		a.logger = l
	}
}

// Run executes the polling loop until ctx is canceled. The first tick
// runs immediately; subsequent ticks follow the configured interval.
// A tick never returns an error: fetch failures abort the tick only
// and the loop retries at the next interval.
func (a *Agent) Run(ctx context.Context) error {
	for {
		a.Tick(ctx)

		if err := a.clock.Sleep(ctx, a.opts.PollInterval); err != nil {
			return err
		}
	}
}

// Tick performs one poll cycle: fetch unseen messages and process each
// sequentially, oldest first.
func (a *Agent) Tick(ctx context.Context) {
	messages, err := a.reader.FetchUnseen(ctx)
	if err != nil {
		// Transport down: abort this tick, retry next interval.
		a.logger.Printf("agent: fetching unseen messages: %v", err)
		return
	}

	if len(messages) == 0 {
		return
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Date.Before(messages[j].Date)
	})

	a.logger.Printf("agent: %d unseen message(s)", len(messages))

	for _, msg := range messages {
		a.processOne(ctx, msg)
	}
}

// processOne runs the pipeline for a single message. Every path marks
// the message seen exactly once; classified booking attempts produce
// exactly one outbound notification, non-bookings none. Collaborator
// failures never propagate: they become a notified internal-error
// outcome.
func (a *Agent) processOne(ctx context.Context, msg mailbox.Message) {
	started := a.clock.Now()

	if !a.subjectMatches(msg.Subject) {
		a.markSeen(ctx, msg.UID)
		a.logger.Printf("agent: uid=%d subject does not match filter, skipped", msg.UID)
		return
	}

	res := a.extract(ctx, msg)

	switch res.Kind {
	case intent.KindNotABooking:
		a.markSeen(ctx, msg.UID)
		a.record(ctx, msg, model.ClassificationNotBooking, "", "", started)
		a.logProcessed(msg, model.ClassificationNotBooking, "skipped", started)

	case intent.KindIncomplete:
		a.markSeen(ctx, msg.UID)
		reason := fmt.Sprintf(
			"Your request was missing: %s. Please reply with all details.",
			strings.Join(res.MissingFields, ", "),
		)
		a.notifyFailure(ctx, msg.From, msg.SenderName, reason)
		a.record(ctx, msg, model.ClassificationIncomplete,
			string(model.ReasonIncompleteIntent), "", started)
		a.logProcessed(msg, model.ClassificationIncomplete,
			string(model.ReasonIncompleteIntent), started)

	case intent.KindParsed:
		outcome := a.execute(ctx, res.Request)

		// Consumed at most once even on failure: a failed attempt must
		// not be re-run forever on the same email.
		a.markSeen(ctx, msg.UID)

		if outcome.Confirmed {
			a.notifySuccess(ctx, res.Request, outcome.ConfirmationRef)
			a.record(ctx, msg, model.ClassificationParsed,
				"confirmed", outcome.ConfirmationRef, started)
			a.logProcessed(msg, model.ClassificationParsed,
				"confirmed ref="+outcome.ConfirmationRef, started)
		} else {
			a.notifyFailure(ctx, msg.From, res.Request.GuestName, outcome.Detail)
			a.record(ctx, msg, model.ClassificationParsed,
				string(outcome.Reason), "", started)
			a.logger.Printf("agent: uid=%d booking failed reason=%s detail=%q",
				msg.UID, outcome.Reason, outcome.Detail)
			a.logProcessed(msg, model.ClassificationParsed,
				string(outcome.Reason), started)
		}
	}
}

// subjectMatches applies the configured trigger filter. An empty
// filter matches everything.
func (a *Agent) subjectMatches(subject string) bool {
	if a.opts.SubjectFilter == "" {
		return true
	}
	return strings.Contains(
		strings.ToLower(subject),
		strings.ToLower(a.opts.SubjectFilter),
	)
}

// extract classifies the message body. An extractor error is recovered
// into an incomplete result so the requester still gets an answer.
func (a *Agent) extract(ctx context.Context, msg mailbox.Message) intent.Result {
	res, err := a.extractor.Extract(ctx, intent.Input{
		Body:        msg.Body,
		SenderName:  msg.SenderName,
		SenderEmail: msg.From,
	})
	if err != nil {
		a.logger.Printf("agent: uid=%d extraction failed: %v", msg.UID, err)
		return intent.Result{
			Kind: intent.KindIncomplete,
			MissingFields: []string{
				"check-in date", "check-out date", "room type",
			},
		}
	}
	return res
}

// execute runs the booking attempt, converting unexpected errors and
// panics into an internal-error outcome so the loop survives any
// single message.
func (a *Agent) execute(
	ctx context.Context, req model.BookingRequest,
) (outcome model.BookingOutcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Printf("agent: booking executor panic: %v", r)
			outcome = model.Failed(model.ReasonInternalError, internalErrorDetail)
		}
	}()

	out, err := a.executor.Execute(ctx, req)
	if err != nil {
		a.logger.Printf("agent: booking executor error: %v", err)
		return model.Failed(model.ReasonInternalError, internalErrorDetail)
	}
	return out
}

// markSeen sets the durable seen flag. A failure here is logged only;
// the message may be reprocessed next tick, which is the acceptable
// side of that trade.
func (a *Agent) markSeen(ctx context.Context, uid uint32) {
	if err := a.reader.MarkSeen(ctx, uid); err != nil {
		a.logger.Printf("agent: marking uid=%d seen: %v", uid, err)
	}
}

// notifySuccess sends the confirmation email. Send failures are logged
// and never re-enter the pipeline.
func (a *Agent) notifySuccess(ctx context.Context, req model.BookingRequest, ref string) {
	n, err := notify.SuccessNotification(req, ref, a.clock.Now())
	if err != nil {
		a.logger.Printf("agent: rendering confirmation: %v", err)
		return
	}
	if err := a.notifier.Send(ctx, n); err != nil {
		a.logger.Printf("agent: sending confirmation to %s: %v", n.Recipient, err)
	}
}

// notifyFailure sends the failure email. Send failures are logged and
// never re-enter the pipeline.
func (a *Agent) notifyFailure(ctx context.Context, recipient, guestName, reason string) {
	n, err := notify.FailureNotification(recipient, guestName, reason, a.clock.Now())
	if err != nil {
		a.logger.Printf("agent: rendering failure notice: %v", err)
		return
	}
	if err := a.notifier.Send(ctx, n); err != nil {
		a.logger.Printf("agent: sending failure notice to %s: %v", n.Recipient, err)
	}
}

// record appends the journal row for a processed message. Best effort.
func (a *Agent) record(
	ctx context.Context,
	msg mailbox.Message,
	classification model.Classification,
	outcomeReason, confirmationRef string,
	started time.Time,
) {
	if a.journal == nil {
		return
	}

	err := a.journal.RecordProcessed(ctx, model.JournalRecord{
		MessageUID:      msg.UID,
		MessageID:       msg.MessageID,
		Sender:          msg.From,
		Subject:         msg.Subject,
		Classification:  classification,
		OutcomeReason:   outcomeReason,
		ConfirmationRef: confirmationRef,
		StartedAt:       started,
		FinishedAt:      a.clock.Now(),
	})
	if err != nil {
		a.logger.Printf("agent: journaling uid=%d: %v", msg.UID, err)
	}
}

// logProcessed emits the one operational log entry per processed
// message: classification, outcome, and timing.
func (a *Agent) logProcessed(
	msg mailbox.Message,
	classification model.Classification,
	outcome string,
	started time.Time,
) {
	a.logger.Printf("agent: processed uid=%d from=%s classification=%s outcome=%s in %s",
		msg.UID, msg.From, classification, outcome,
		a.clock.Now().Sub(started).Round(time.Millisecond))
}
