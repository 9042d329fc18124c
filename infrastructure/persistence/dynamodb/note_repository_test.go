package dynamodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Date-range filters compare stored timestamps as strings, so the
// layout must keep lexicographic and chronological order aligned even
// when the fractional part would otherwise be dropped.
func TestStoredTimeOrderingAtSecondBoundary(t *testing.T) {
	boundary := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	halfPast := boundary.Add(500 * time.Millisecond)
	justBefore := boundary.Add(-time.Nanosecond)

	assert.True(t, formatStoredTime(halfPast) >= formatStoredTime(boundary))
	assert.True(t, formatStoredTime(justBefore) < formatStoredTime(boundary))
	assert.True(t, formatStoredTime(boundary.Add(time.Second)) > formatStoredTime(halfPast))
}

func TestStoredTimeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 500_000_000, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 999_999_999, time.UTC),
	}

	for _, want := range cases {
		stored := formatStoredTime(want)
		assert.Len(t, stored, len(storedTimeLayout))

		got, err := parseStoredTime(stored)
		require.NoError(t, err)
		assert.True(t, got.Equal(want))
	}
}

func TestParseStoredTimeAcceptsTruncatedFractions(t *testing.T) {
	// Rows written before the fixed-width layout carry plain RFC 3339
	// timestamps; reads must still handle them.
	got, err := parseStoredTime("2025-06-01T00:00:00.5Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 6, 1, 0, 0, 0, 500_000_000, time.UTC)))
}
