package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidTimezone(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		want bool
	}{
		{"iana name", "America/Denver", true},
		{"utc", "UTC", true},
		{"padded", "  Europe/Berlin ", true},
		{"unknown", "Not/AZone", false},
		{"empty", "", false},
		{"garbage", "../../etc/passwd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTimezone(tt.tz))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	zones := []string{"UTC", "America/Denver", "Europe/London", "Australia/Lord_Howe", "Asia/Kolkata", "America/Santiago"}
	instants := []time.Time{
		time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC),  // US spring forward
		time.Date(2024, 11, 3, 7, 30, 0, 0, time.UTC),  // US fall back, first 01:30 MDT
		time.Date(2024, 11, 3, 8, 30, 0, 0, time.UTC),  // second 01:30 MST
		time.Date(2024, 3, 31, 1, 15, 0, 0, time.UTC),  // EU spring forward
		time.Date(2024, 10, 27, 1, 15, 0, 0, time.UTC), // EU fall back
		time.Date(1999, 12, 31, 23, 59, 59, 999, time.UTC),
		time.Date(2038, 1, 19, 3, 14, 8, 0, time.UTC),
	}

	for _, name := range zones {
		loc, err := Load(name)
		require.NoError(t, err)
		for _, x := range instants {
			got := ToUTC(ToLocal(x, loc))
			assert.True(t, got.Equal(x), "%s: %s round-tripped to %s", name, x, got)
			assert.Equal(t, time.UTC, got.Location())
		}
	}
}

func TestWallClock_DSTGap(t *testing.T) {
	loc, err := Load("America/Denver")
	require.NoError(t, err)

	// 02:30 does not exist on 2024-03-10 in Denver.
	got := WallClock(2024, time.March, 10, 2, 30, loc)
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 30, got.Minute())

	// Same fields always resolve to the same instant.
	assert.True(t, got.Equal(WallClock(2024, time.March, 10, 2, 30, loc)))
}

func TestWallClock_MidnightGapResolvesForward(t *testing.T) {
	loc, err := Load("America/Santiago")
	require.NoError(t, err)

	// 2026-09-06 00:00 does not exist in Santiago; clocks jump to 01:00.
	got := WallClock(2026, time.September, 6, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 9, 6, 4, 0, 0, 0, time.UTC), got.UTC())
	assert.Equal(t, 6, got.Day())
	assert.Equal(t, 1, got.Hour())

	assert.Equal(t, got, StartOfDay(time.Date(2026, 9, 6, 18, 0, 0, 0, time.UTC), loc))
}

func TestWallClock_Offsets(t *testing.T) {
	loc, err := Load("America/Denver")
	require.NoError(t, err)

	winter := WallClock(2024, time.January, 15, 0, 0, loc)
	_, off := winter.Zone()
	assert.Equal(t, -7*3600, off)

	summer := WallClock(2024, time.July, 15, 0, 0, loc)
	_, off = summer.Zone()
	assert.Equal(t, -6*3600, off)
}

func TestTruncateMinute(t *testing.T) {
	loc, err := Load("Asia/Kolkata")
	require.NoError(t, err)

	x := time.Date(2024, 5, 6, 9, 15, 42, 123456789, loc)
	got := TruncateMinute(x)
	assert.Equal(t, 15, got.Minute())
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, 0, got.Nanosecond())
	assert.Equal(t, 9, got.Hour())
}

func TestStartOfDay(t *testing.T) {
	loc, err := Load("America/Denver")
	require.NoError(t, err)

	x := time.Date(2024, 7, 2, 3, 0, 0, 0, time.UTC) // 2024-07-01 21:00 MDT
	got := StartOfDay(x, loc)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, loc), got)
}
