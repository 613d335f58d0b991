package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookedAt(t *testing.T) {
	date, clock, ok := ParseBookedAt("6/15/2025 10:30:45 AM")
	require.True(t, ok)
	require.NotNil(t, date)
	require.NotNil(t, clock)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), *date)
	assert.Equal(t, 10, clock.Hour())
	assert.Equal(t, 30, clock.Minute())
	assert.Equal(t, 45, clock.Second())
}

func TestParseBookedAtAfternoon(t *testing.T) {
	_, clock, ok := ParseBookedAt("12/1/2024 1:05:00 PM")
	require.True(t, ok)
	assert.Equal(t, 13, clock.Hour())
}

func TestParseBookedAtMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"6/15/2025",
		"6/15/2025 10:30:45",
		"15/6/2025 10:30:45 AM", // month out of range
		"6/15/2025 25:30:45 AM",
		"not a timestamp at all",
	} {
		date, clock, ok := ParseBookedAt(s)
		assert.False(t, ok, "input %q", s)
		assert.Nil(t, date)
		assert.Nil(t, clock)
	}
}
