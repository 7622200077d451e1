package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "RFC3339 UTC",
			raw:      "2025-06-12T15:00:00Z",
			expected: time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339 with offset",
			raw:      "2025-06-12T10:00:00-05:00",
			expected: time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339 with millis",
			raw:      "2025-06-12T15:00:00.000Z",
			expected: time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC),
		},
		{
			name:     "Local minutes",
			raw:      "2025-06-12T10:00",
			expected: time.Date(2025, 6, 12, 10, 0, 0, 0, chicago),
		},
		{
			name:     "Local with space and seconds",
			raw:      "2025-06-12 10:30:15",
			expected: time.Date(2025, 6, 12, 10, 30, 15, 0, chicago),
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  2025-06-12T10:00  ",
			expected: time.Date(2025, 6, 12, 10, 0, 0, 0, chicago),
		},
		{name: "Empty", raw: "", expectErr: true},
		{name: "Date only", raw: "2025-06-12", expectErr: true},
		{name: "Garbage", raw: "tomorrow at ten", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Timestamp(tc.raw, chicago)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(parsed), "expected %s, got %s", tc.expected, parsed)
		})
	}
}

func TestDate(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	d, err := Date("2025-06-12", chicago)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2025, 6, 12, 0, 0, 0, 0, chicago)))

	_, err = Date("06/12/2025", chicago)
	assert.Error(t, err)
}

func TestClock(t *testing.T) {
	testCases := []struct {
		raw       string
		hour      int
		minute    int
		expectErr bool
	}{
		{raw: "09:00", hour: 9, minute: 0},
		{raw: "9:45", hour: 9, minute: 45},
		{raw: "21:15", hour: 21, minute: 15},
		{raw: "24:00", expectErr: true},
		{raw: "12:60", expectErr: true},
		{raw: "noon", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			h, m, err := Clock(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.hour, h)
			assert.Equal(t, tc.minute, m)
		})
	}
}

func TestDayOf(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 02:30 UTC on the 13th is still the evening of the 12th in Chicago.
	day := DayOf(time.Date(2025, 6, 13, 2, 30, 0, 0, time.UTC), chicago)
	assert.Equal(t, "2025-06-12", day.String())
	assert.True(t, day.Contains(time.Date(2025, 6, 12, 5, 0, 0, 0, time.UTC)))
	assert.False(t, day.Contains(time.Date(2025, 6, 13, 5, 0, 0, 0, time.UTC)))

	// The day DST starts is 23 hours long.
	dst := DayOf(time.Date(2025, 3, 9, 12, 0, 0, 0, chicago), chicago)
	assert.Equal(t, 23*time.Hour, dst.To.Sub(dst.From))
}
