package booker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/booking-agent/internal/model"
)

func TestExecuteUnknownRoomTypeFailsBeforeBrowser(t *testing.T) {
	// An unreachable base URL proves the browser is never started: the
	// catalog check resolves the attempt first.
	d := NewDriver("http://127.0.0.1:1", "admin", "secret", true,
		time.Second, "")

	outcome, err := d.Execute(context.Background(), model.BookingRequest{
		GuestName:  "Sarah Johnson",
		GuestEmail: "sarah@example.com",
		RoomType:   "Underwater Igloo",
		CheckIn:    time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC),
		Adults:     2,
	})
	require.NoError(t, err)

	assert.False(t, outcome.Confirmed)
	assert.Equal(t, model.ReasonAutomationMismatch, outcome.Reason)
	assert.Contains(t, outcome.Detail, "Underwater Igloo")
	assert.Contains(t, outcome.Detail, "not offered")
}

func TestNewDriverDefaults(t *testing.T) {
	d := NewDriver("https://admin.example.com/", "admin", "secret", true, 0, "")
	assert.Equal(t, "https://admin.example.com", d.baseURL, "trailing slash trimmed")
	assert.Equal(t, 30*time.Second, d.actionTimeout)
}
