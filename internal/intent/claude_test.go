package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newClaudeServer returns an extractor pointed at a test server that
// replies with the given content text.
func newClaudeServer(t *testing.T, status int, contentText string) *ClaudeExtractor {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
				return
			}
			resp := apiResponse{
				Content: []apiContentBlock{{Type: "text", Text: contentText}},
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
	t.Cleanup(server.Close)

	e := NewClaudeExtractor("test-key", "", 0)
	e.apiURL = server.URL
	e.now = func() time.Time { return testNow }
	return e
}

func TestClaudeExtractParsed(t *testing.T) {
	e := newClaudeServer(t, http.StatusOK, `{
		"is_booking": true,
		"guest_name": "Alice",
		"check_in": "2026-03-22",
		"check_out": "2026-03-25",
		"room_type": "Deluxe Room",
		"num_adults": 2,
		"num_children": 0
	}`)

	res, err := e.Extract(context.Background(), testInput("whatever"))
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, "Alice", res.Request.GuestName)
	assert.Equal(t, "Deluxe Room", res.Request.RoomType)
	assert.Equal(t, date(2026, time.March, 22), res.Request.CheckIn)
	assert.Equal(t, date(2026, time.March, 25), res.Request.CheckOut)
	assert.Equal(t, 2, res.Request.Adults)
}

func TestClaudeExtractToleratesCodeFences(t *testing.T) {
	e := newClaudeServer(t, http.StatusOK, "```json\n"+`{
		"is_booking": true,
		"guest_name": "Bob",
		"check_in": "2026-06-01",
		"check_out": "2026-06-03",
		"room_type": "Premium Suite",
		"num_adults": 1,
		"num_children": 0
	}`+"\n```")

	res, err := e.Extract(context.Background(), testInput("whatever"))
	require.NoError(t, err)
	assert.Equal(t, KindParsed, res.Kind)
}

func TestClaudeExtractNotABooking(t *testing.T) {
	e := newClaudeServer(t, http.StatusOK, `{"is_booking": false}`)

	res, err := e.Extract(context.Background(), testInput("hello there"))
	require.NoError(t, err)
	assert.Equal(t, KindNotABooking, res.Kind)
}

func TestClaudeExtractMapsSynonymRoomTypes(t *testing.T) {
	e := newClaudeServer(t, http.StatusOK, `{
		"is_booking": true,
		"guest_name": "Alice",
		"check_in": "2026-03-22",
		"check_out": "2026-03-25",
		"room_type": "sea view",
		"num_adults": 1,
		"num_children": 0
	}`)

	res, err := e.Extract(context.Background(), testInput("whatever"))
	require.NoError(t, err)
	require.Equal(t, KindParsed, res.Kind)
	assert.Equal(t, "Deluxe Sea View Room", res.Request.RoomType)
}

func TestClaudeExtractIncompleteFields(t *testing.T) {
	e := newClaudeServer(t, http.StatusOK, `{
		"is_booking": true,
		"guest_name": "Alice",
		"room_type": "Deluxe Room",
		"num_adults": 1
	}`)

	res, err := e.Extract(context.Background(), testInput("whatever"))
	require.NoError(t, err)
	require.Equal(t, KindIncomplete, res.Kind)
	assert.Contains(t, res.MissingFields, "check-in date")
	assert.Contains(t, res.MissingFields, "check-out date")
}

func TestClaudeExtractAPIErrorReturnsError(t *testing.T) {
	e := newClaudeServer(t, http.StatusInternalServerError, "")

	_, err := e.Extract(context.Background(), testInput("whatever"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestClaudeExtractGarbageOutputReturnsError(t *testing.T) {
	e := newClaudeServer(t, http.StatusOK, "I am sorry, I cannot help with that.")

	_, err := e.Extract(context.Background(), testInput("whatever"))
	require.Error(t, err)
}
