package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/avail/internal/availability"
	"github.com/teemow/avail/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Defaults: config.Defaults{
			Min:      "9:00am",
			Max:      "5:00pm",
			Window:   "1w",
			Duration: "30m",
		},
	}
}

func TestBuildConstraintsDefaults(t *testing.T) {
	now := time.Date(2022, time.October, 5, 14, 42, 0, 0, time.UTC)

	c, err := buildConstraints(findOptions{}, testConfig(), time.UTC, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC), c.Window.Start)
	assert.Equal(t, time.Date(2022, time.October, 11, 0, 0, 0, 0, time.UTC), c.Window.End)
	assert.Equal(t, availability.Clock{Hour: 9}, c.Daily.Min)
	assert.Equal(t, availability.Clock{Hour: 17}, c.Daily.Max)
	assert.Equal(t, 30*time.Minute, c.MinDuration)
	assert.False(t, c.IncludeWeekends)
}

func TestBuildConstraintsExplicitRange(t *testing.T) {
	now := time.Date(2022, time.October, 5, 14, 42, 0, 0, time.UTC)

	opts := findOptions{
		start:           "10/10/2022",
		end:             "10/14/2022",
		min:             "8:00am",
		max:             "6:00pm",
		duration:        "1h",
		includeWeekends: true,
	}

	c, err := buildConstraints(opts, testConfig(), time.UTC, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2022, time.October, 10, 0, 0, 0, 0, time.UTC), c.Window.Start)
	assert.Equal(t, time.Date(2022, time.October, 14, 0, 0, 0, 0, time.UTC), c.Window.End)
	assert.Equal(t, availability.Clock{Hour: 8}, c.Daily.Min)
	assert.Equal(t, availability.Clock{Hour: 18}, c.Daily.Max)
	assert.Equal(t, time.Hour, c.MinDuration)
	assert.True(t, c.IncludeWeekends)
}

func TestBuildConstraintsWindowShorthand(t *testing.T) {
	now := time.Date(2022, time.October, 5, 9, 0, 0, 0, time.UTC)

	c, err := buildConstraints(findOptions{window: "3d"}, testConfig(), time.UTC, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC), c.Window.Start)
	assert.Equal(t, time.Date(2022, time.October, 7, 0, 0, 0, 0, time.UTC), c.Window.End)
}

func TestBuildConstraintsInvalid(t *testing.T) {
	now := time.Date(2022, time.October, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		opts findOptions
	}{
		{"bad date", findOptions{start: "2022-10-05"}},
		{"bad clock", findOptions{min: "morning"}},
		{"bad duration", findOptions{duration: "90"}},
		{"inverted bounds", findOptions{min: "5:00pm", max: "9:00am"}},
		{"end before start", findOptions{start: "10/10/2022", end: "10/03/2022"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildConstraints(tt.opts, testConfig(), time.UTC, now)
			assert.Error(t, err)
		})
	}
}

func TestClipToNow(t *testing.T) {
	day := time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)
	now := day.Add(10*time.Hour + 10*time.Minute) // rounds up to 10:30

	slots := []availability.Slot{
		{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)},                   // fully past
		{Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},                  // trimmed
		{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 45*time.Minute)},   // too short after trim
		{Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour)},                  // untouched
		{Start: day.AddDate(0, 0, 1).Add(9 * time.Hour), End: day.AddDate(0, 0, 1).Add(17 * time.Hour)}, // next day
	}

	got := clipToNow(slots, now, 30*time.Minute)
	require.Len(t, got, 3)

	assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), got[0].Start)
	assert.Equal(t, day.Add(12*time.Hour), got[0].End)
	assert.Equal(t, day.Add(14*time.Hour), got[1].Start)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(9*time.Hour), got[2].Start)
}

func TestClipToNowFractionalOffsetZone(t *testing.T) {
	ktm, err := time.LoadLocation("Asia/Kathmandu") // UTC+05:45
	require.NoError(t, err)

	day := time.Date(2022, time.October, 5, 0, 0, 0, 0, ktm)
	now := day.Add(10*time.Hour + 10*time.Minute) // 10:10 local

	slots := []availability.Slot{
		{Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},
	}

	// The cutoff must be 10:30 on the local wall clock, not an
	// epoch-aligned 10:15.
	got := clipToNow(slots, now, 30*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), got[0].Start)
}

func TestClipToNowOnBoundary(t *testing.T) {
	day := time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)
	now := day.Add(10 * time.Hour) // already on a half-hour boundary

	slots := []availability.Slot{
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
	}

	got := clipToNow(slots, now, 30*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, day.Add(10*time.Hour), got[0].Start)
}
