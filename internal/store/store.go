package store

import (
	"context"

	"github.com/nhle/booking-agent/internal/model"
)

// Store is the processing journal: one row per handled message, for
// audit and operational follow-up. It is observational only: the
// mailbox seen flag, not the journal, decides whether a message is
// processed again.
type Store interface {
	// RecordProcessed appends a journal row. Generates an ID if empty.
	RecordProcessed(ctx context.Context, rec model.JournalRecord) error

	// RecentRecords returns the most recent journal rows, newest
	// first.
	RecentRecords(ctx context.Context, limit int) ([]model.JournalRecord, error)

	// Close releases the underlying database.
	Close() error
}
