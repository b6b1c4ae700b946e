package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Minute, "30m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h30m"},
		{8 * time.Hour, "8h"},
		{7*time.Hour + 45*time.Minute, "7h45m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}

func TestRenderGroupsByDay(t *testing.T) {
	slots := []Slot{
		slot(t, 5, 9, 0, 12, 0),
		slot(t, 5, 14, 0, 15, 30),
		slot(t, 6, 9, 0, 17, 0),
	}

	got := Render(slots)
	want := "Wed Oct 05 2022\n" +
		"- 09:00 AM to 12:00 PM (3h)\n" +
		"- 02:00 PM to 03:30 PM (1h30m)\n" +
		"\n" +
		"Thu Oct 06 2022\n" +
		"- 09:00 AM to 05:00 PM (8h)\n"
	assert.Equal(t, want, got)
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, Render(nil))
}
