package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/booking-agent/internal/model"
)

func TestComposeMessage(t *testing.T) {
	m := NewMailer(model.SMTPConfig{
		Host: "smtp.example.com",
		Port: "587",
		From: "agent@example.com",
	}, "agent@example.com", "secret")

	msg := m.composeMessage(Notification{
		Recipient: "guest@example.com",
		Subject:   "Room Booking Confirmed - #BK-1",
		HTMLBody:  "<html><body>hello</body></html>",
	})

	assert.True(t, strings.HasPrefix(msg,
		"From: Hotel Booking System <agent@example.com>\r\n"))
	assert.Contains(t, msg, "To: guest@example.com\r\n")
	assert.Contains(t, msg, "Subject: Room Booking Confirmed - #BK-1\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, msg, "<html><body>hello</body></html>")
	assert.True(t, strings.HasSuffix(msg, "--"+mimeBoundary+"--\r\n"))

	// The HTML part must come after the plain-text fallback.
	plain := strings.Index(msg, "text/plain")
	html := strings.Index(msg, "text/html")
	require.Greater(t, html, plain)
}

func TestSendRejectsEmptyRecipient(t *testing.T) {
	m := NewMailer(model.SMTPConfig{}, "", "")
	err := m.Send(context.Background(), Notification{Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipient")
}
