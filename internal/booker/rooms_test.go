package booker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomOptionValueExactMatch(t *testing.T) {
	cases := map[string]string{
		"Premium Suite":        "1",
		"Deluxe Room":          "2",
		"Executive Room":       "3",
		"Family Suite":         "4",
		"Deluxe Sea View Room": "5",
		"Presidential Suite":   "6",
	}

	for name, want := range cases {
		got, ok := RoomOptionValue(name)
		require.True(t, ok, "room %q", name)
		assert.Equal(t, want, got, "room %q", name)
	}
}

func TestRoomOptionValueSynonyms(t *testing.T) {
	cases := map[string]string{
		"deluxe":   "2",
		"sea view": "5",
		"beach":    "5",
		"standard": "3",
		"suite":    "1",
	}

	for name, want := range cases {
		got, ok := RoomOptionValue(name)
		require.True(t, ok, "room %q", name)
		assert.Equal(t, want, got, "room %q", name)
	}
}

func TestRoomOptionValueSubstringMatch(t *testing.T) {
	got, ok := RoomOptionValue("the presidential suite with a view")
	require.True(t, ok)
	assert.Equal(t, "6", got)
}

func TestRoomOptionValueUnknown(t *testing.T) {
	_, ok := RoomOptionValue("underwater igloo")
	assert.False(t, ok)

	_, ok = RoomOptionValue("")
	assert.False(t, ok)
}
