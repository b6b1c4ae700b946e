package availability

import (
	"fmt"
	"strings"
	"time"
)

// Render formats slots grouped by day, one day header followed by one line
// per slot:
//
//	Wed Oct 05 2022
//	- 09:00 AM to 12:00 PM (3h)
//	- 02:00 PM to 03:30 PM (1h30m)
func Render(slots []Slot) string {
	var b strings.Builder

	var currentDay time.Time
	for _, slot := range slots {
		day := truncateToDay(slot.Start)
		if !day.Equal(currentDay) {
			if currentDay != (time.Time{}) {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s\n", day.Format("Mon Jan 02 2006"))
			currentDay = day
		}
		fmt.Fprintf(&b, "- %s to %s (%s)\n",
			slot.Start.Format("03:04 PM"),
			slot.End.Format("03:04 PM"),
			FormatDuration(slot.Duration()))
	}

	return b.String()
}

// FormatDuration renders a duration as "2h", "2h30m" or "45m".
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	switch {
	case hours >= 1 && minutes >= 1:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case hours >= 1:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
