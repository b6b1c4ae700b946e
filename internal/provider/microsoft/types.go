package microsoft

import (
	"time"

	"github.com/teemow/avail/internal/provider"
)

// graphDateTime is Graph's dateTimeTimeZone wire shape.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID       string        `json:"id"`
	Subject  string        `json:"subject"`
	Start    graphDateTime `json:"start"`
	End      graphDateTime `json:"end"`
	IsAllDay bool          `json:"isAllDay"`
}

type graphEventRequest struct {
	Subject string        `json:"subject"`
	Start   graphDateTime `json:"start"`
	End     graphDateTime `json:"end"`
}

type eventPage struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

type graphCalendar struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CanEdit bool   `json:"canEdit"`
}

type calendarPage struct {
	Value    []graphCalendar `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}

// graphTimeLayout matches Graph's fractional-second timestamps, e.g.
// "2022-10-05T14:00:00.0000000".
const graphTimeLayout = "2006-01-02T15:04:05.9999999"

// parseGraphTime parses a Graph timestamp. The Prefer header pins responses
// to UTC, so the value carries no offset of its own.
func parseGraphTime(s string) (time.Time, bool) {
	for _, layout := range []string{graphTimeLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toSourceEvent converts one Graph event. Events whose times cannot be
// parsed are skipped.
func toSourceEvent(account, calendarID string, ev graphEvent) (provider.SourceEvent, bool) {
	start, ok := parseGraphTime(ev.Start.DateTime)
	if !ok {
		return provider.SourceEvent{}, false
	}
	end, ok := parseGraphTime(ev.End.DateTime)
	if !ok {
		return provider.SourceEvent{}, false
	}

	return provider.SourceEvent{
		AccountID:  account,
		CalendarID: calendarID,
		Title:      ev.Subject,
		Start:      start,
		End:        end,
		AllDay:     ev.IsAllDay,
	}, true
}
