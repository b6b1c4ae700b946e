package interval

import (
	"time"

	"github.com/teemow/avail/internal/provider"
)

// Normalize converts provider events into canonical intervals expressed in
// the reference location. All-day events occupy local midnight to local
// midnight of the following civil date. Zero- and negative-length events are
// dropped; the returned count lets the caller report the data-quality issue.
//
// The output is unordered and may contain overlaps; Merge sorts and merges.
// Events appearing on multiple calendars are deliberately not deduplicated
// since merging removes the overlap anyway.
func Normalize(events []provider.SourceEvent, loc *time.Location) (intervals []Interval, dropped int) {
	if loc == nil {
		loc = time.Local
	}

	intervals = make([]Interval, 0, len(events))
	for _, ev := range events {
		var iv Interval
		if ev.AllDay {
			iv = allDayInterval(ev, loc)
		} else {
			iv = Interval{Start: ev.Start.In(loc), End: ev.End.In(loc)}
		}

		if !iv.IsValid() {
			dropped++
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals, dropped
}

// allDayInterval projects an all-day event's civil dates into the reference
// location. The event's End date is already exclusive on the wire, so an
// event on a single day carries End = Start + 1 day.
func allDayInterval(ev provider.SourceEvent, loc *time.Location) Interval {
	sy, sm, sd := ev.Start.UTC().Date()
	ey, em, ed := ev.End.UTC().Date()
	return Interval{
		Start: time.Date(sy, sm, sd, 0, 0, 0, 0, loc),
		End:   time.Date(ey, em, ed, 0, 0, 0, 0, loc),
	}
}
