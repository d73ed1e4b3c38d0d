package mailbox

import (
	"context"
	"time"
)

// Message is one fetched, not-yet-processed inbox item. Read-only once
// fetched; the UID is the identity used for idempotent processing.
type Message struct {
	UID        uint32
	MessageID  string
	Subject    string
	From       string
	SenderName string
	Date       time.Time
	Body       string
}

// Reader is the mailbox contract the agent consumes. Once MarkSeen
// succeeds for a UID, FetchUnseen must never return that UID again;
// the transport's seen flag is the system's durable idempotency marker.
type Reader interface {
	FetchUnseen(ctx context.Context) ([]Message, error)
	MarkSeen(ctx context.Context, uid uint32) error
}
