package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/teemow/avail/internal/provider"
)

// expand parses an ICS payload and returns the concrete occurrences that
// overlap [from, to). Unparsable VEVENTs are skipped; the window filter keeps
// the engine from seeing events outside the search range.
func expand(account string, body []byte, from, to time.Time) ([]provider.SourceEvent, error) {
	cal, err := parseCalendar(body)
	if err != nil {
		return nil, err
	}

	var events []provider.SourceEvent
	for _, ve := range cal.Events() {
		events = append(events, expandEvent(account, ve, from, to)...)
	}
	return events, nil
}

func expandEvent(account string, ve *ical.VEvent, from, to time.Time) []provider.SourceEvent {
	start, err := ve.GetStartAt()
	if err != nil {
		return nil
	}

	allDay := isAllDay(ve)

	end, err := ve.GetEndAt()
	if err != nil {
		// DTEND is optional; all-day events default to one day, timed ones
		// to a zero-length instant that the normalizer drops.
		if allDay {
			end = start.Add(24 * time.Hour)
		} else {
			return nil
		}
	}

	title := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}

	base := provider.SourceEvent{
		AccountID:  account,
		CalendarID: FeedCalendarID,
		Title:      title,
		AllDay:     allDay,
	}

	rawRule := ""
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rawRule = p.Value
	}

	if rawRule == "" {
		if !overlaps(start, end, from, to) {
			return nil
		}
		out := base
		out.Start = civilize(start, allDay)
		out.End = civilize(end, allDay)
		return []provider.SourceEvent{out}
	}

	rule, err := rrule.StrToRRule(rawRule)
	if err != nil {
		return nil
	}
	rule.DTStart(start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range exDates(ve) {
		set.ExDate(ex.In(start.Location()))
	}

	duration := end.Sub(start)

	starts := set.Between(from.In(start.Location()).Add(-duration), to.In(start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	var out []provider.SourceEvent
	for _, occStart := range starts {
		occEnd := occStart.Add(duration)
		if !overlaps(occStart, occEnd, from, to) {
			continue
		}
		ev := base
		ev.Start = civilize(occStart, allDay)
		ev.End = civilize(occEnd, allDay)
		out = append(out, ev)
	}
	return out
}

// isAllDay detects VALUE=DATE starts, which carry a civil date instead of an
// instant.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// parseICSTime parses the basic ICS date and date-time forms used by EXDATE.
func parseICSTime(v string) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.UTC)
	}
	return time.ParseInLocation("20060102", v, time.UTC)
}

// civilize rewrites an all-day occurrence as its civil date at midnight UTC,
// the shape the normalizer expects for AllDay events.
func civilize(t time.Time, allDay bool) time.Time {
	if !allDay {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
