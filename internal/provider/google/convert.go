package google

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/avail/internal/provider"
)

// toSourceEvent converts one Calendar API event. All-day events arrive with a
// Date instead of a DateTime; their civil dates are parsed as midnight UTC
// and flagged so the normalizer can project them into the reference timezone.
// Events whose times cannot be parsed are skipped.
func toSourceEvent(account, calendarID string, ev *calendar.Event) (provider.SourceEvent, bool) {
	if ev == nil || ev.Start == nil || ev.End == nil {
		return provider.SourceEvent{}, false
	}

	out := provider.SourceEvent{
		AccountID:  account,
		CalendarID: calendarID,
		Title:      ev.Summary,
	}

	if ev.Start.Date != "" {
		start, err := time.ParseInLocation("2006-01-02", ev.Start.Date, time.UTC)
		if err != nil {
			return provider.SourceEvent{}, false
		}
		end, err := time.ParseInLocation("2006-01-02", ev.End.Date, time.UTC)
		if err != nil {
			return provider.SourceEvent{}, false
		}
		out.Start = start
		out.End = end
		out.AllDay = true
		return out, true
	}

	start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return provider.SourceEvent{}, false
	}
	end, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return provider.SourceEvent{}, false
	}
	out.Start = start
	out.End = end
	return out, true
}

// calendarName prefers the user's override name over the calendar's own
// summary.
func calendarName(entry *calendar.CalendarListEntry) string {
	if entry.SummaryOverride != "" {
		return entry.SummaryOverride
	}
	return entry.Summary
}

// canEdit reports whether an access role permits creating events.
func canEdit(accessRole string) bool {
	return accessRole == "owner" || accessRole == "writer"
}
