package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/avail/internal/availability"
)

func TestParseShorthand(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1w", 7 * 24 * time.Hour},
		{"3d", 72 * time.Hour},
		{"2h", 2 * time.Hour},
		{"30m", 30 * time.Minute},
		{"45m", 45 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseShorthand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseShorthandInvalid(t *testing.T) {
	for _, input := range []string{"", "w", "10", "10s", "1.5h", "-2d", "2hm"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseShorthand(input)
			assert.Error(t, err)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  availability.Clock
	}{
		{"9:00am", availability.Clock{Hour: 9}},
		{"5:00pm", availability.Clock{Hour: 17}},
		{"12:30pm", availability.Clock{Hour: 12, Minute: 30}},
		{"12:30am", availability.Clock{Hour: 0, Minute: 30}},
		{"5pm", availability.Clock{Hour: 17}},
		{"17:00", availability.Clock{Hour: 17}},
		{"08:15", availability.Clock{Hour: 8, Minute: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, input := range []string{"", "25:00", "9:99am", "noon"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseClock(input)
			assert.Error(t, err)
		})
	}
}

func TestParseDate(t *testing.T) {
	nyc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := ParseDate("10/05/2022", nyc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, time.October, 5, 0, 0, 0, 0, nyc), got)

	_, err = ParseDate("2022-10-05", nyc)
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9:00am", cfg.Defaults.Min)
	assert.Equal(t, "5:00pm", cfg.Defaults.Max)
	assert.Equal(t, "1w", cfg.Defaults.Window)
	assert.Equal(t, "30m", cfg.Defaults.Duration)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
