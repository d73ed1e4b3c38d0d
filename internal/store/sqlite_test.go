package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/booking-agent/internal/model"
	"github.com/nhle/booking-agent/tests/testutil"
)

func TestRecordProcessedRoundtrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	rec := model.JournalRecord{
		MessageUID:      42,
		MessageID:       "<msg-42@example.com>",
		Sender:          "guest@example.com",
		Subject:         "Room Booking Request",
		Classification:  model.ClassificationParsed,
		ConfirmationRef: "BK-4821",
		StartedAt:       started,
		FinishedAt:      started.Add(3 * time.Second),
	}
	require.NoError(t, s.RecordProcessed(ctx, rec))

	records, err := s.RecentRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.NotEmpty(t, got.ID, "missing ID should be generated")
	assert.Equal(t, uint32(42), got.MessageUID)
	assert.Equal(t, "<msg-42@example.com>", got.MessageID)
	assert.Equal(t, "guest@example.com", got.Sender)
	assert.Equal(t, model.ClassificationParsed, got.Classification)
	assert.Equal(t, "BK-4821", got.ConfirmationRef)
	assert.True(t, got.StartedAt.Equal(started))
}

func TestRecordProcessedRequiresClassification(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.RecordProcessed(context.Background(), model.JournalRecord{
		MessageUID: 1,
		Sender:     "guest@example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classification")
}

func TestRecentRecordsNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordProcessed(ctx, model.JournalRecord{
			MessageUID:     uint32(i + 1),
			Sender:         "guest@example.com",
			Classification: model.ClassificationNotBooking,
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			FinishedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := s.RecentRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint32(3), records[0].MessageUID)
	assert.Equal(t, uint32(2), records[1].MessageUID)
}

func TestRecentRecordsDefaultLimit(t *testing.T) {
	s := testutil.NewTestStore(t)

	records, err := s.RecentRecords(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
