package booker

import (
	"sort"
	"strings"
)

// roomOptionValues maps room-type names to the value attribute of the
// admin UI's room-type select. Keys are lowercase; synonyms map to the
// same value as their canonical name.
var roomOptionValues = map[string]string{
	"premium suite":        "1",
	"premium":              "1",
	"suite":                "1",
	"deluxe room":          "2",
	"deluxe":               "2",
	"double":               "2",
	"executive room":       "3",
	"executive":            "3",
	"standard":             "3",
	"family suite":         "4",
	"family":               "4",
	"deluxe sea view room": "5",
	"sea view":             "5",
	"beach":                "5",
	"presidential suite":   "6",
	"presidential":         "6",
}

// roomKeysByLength orders the catalog keys longest first so that a
// substring scan prefers "presidential suite" over "suite".
var roomKeysByLength = func() []string {
	keys := make([]string, 0, len(roomOptionValues))
	for k := range roomOptionValues {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// RoomOptionValue resolves a room-type string to the select value the
// admin UI expects. Exact match first, then substring match either
// way. Returns false when the room type maps to nothing in the
// catalog.
func RoomOptionValue(roomType string) (string, bool) {
	rt := strings.ToLower(strings.TrimSpace(roomType))
	if rt == "" {
		return "", false
	}

	if v, ok := roomOptionValues[rt]; ok {
		return v, true
	}

	for _, key := range roomKeysByLength {
		if strings.Contains(rt, key) || strings.Contains(key, rt) {
			return roomOptionValues[key], true
		}
	}

	return "", false
}
