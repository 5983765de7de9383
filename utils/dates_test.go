package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"22nd February 2026", time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)},
		{"22 Feb 2026", time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)},
		{"Sunday, 1st March 2026", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"16/Mar/2026", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
		{"2026-03-08", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
		{"March 3rd, 2026", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"2028-02-29", time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	for _, in := range []string{"", "Next Sunday", "22 February", "February 2026", "22 2026", "2026-02-30", "2026-13-01", "31 April 2026"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
}

func TestSerialToDate(t *testing.T) {
	// 46073 is 2026-02-20 in spreadsheet serial form.
	got := SerialToDate(46073)
	assert.Equal(t, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "20 Feb 2026", FormatShortDate(got))
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, 20260222, DateKey(time.Date(2026, 2, 22, 15, 0, 0, 0, time.UTC)))
}

func TestLeadingInt(t *testing.T) {
	n, ok := LeadingInt("14th (Sat)")
	require.True(t, ok)
	assert.Equal(t, 14, n)

	_, ok = LeadingInt("TBC")
	assert.False(t, ok)
}

func TestEndOfFollowingMonth(t *testing.T) {
	got := EndOfFollowingMonth(time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), got)

	got = EndOfFollowingMonth(time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), got)
}
