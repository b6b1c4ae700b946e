package availability

import (
	"time"

	"github.com/teemow/avail/internal/interval"
)

// Slot is a maximal free gap within one day's availability envelope.
// Its length is always at least the requested minimum duration.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the slot.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Find walks the busy timeline inside the search window and returns the free
// slots satisfying the constraints, in chronological order. The timeline must
// already be merged (sorted, non-overlapping).
//
// A single cursor advances over the timeline across days, so the walk is
// O(len(timeline) + days). Slot boundaries are snapped inward to whole
// minutes; busy time is never shrunk, only the reported free gap.
func Find(timeline interval.Timeline, c Constraints) ([]Slot, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var slots []Slot
	idx := 0

	for day := c.Window.Start; !day.After(c.Window.End); day = day.AddDate(0, 0, 1) {
		if !c.IncludeWeekends && isWeekend(day.Weekday()) {
			continue
		}

		envStart := c.Daily.Min.On(day)
		envEnd := c.Daily.Max.On(day)

		// Busy intervals that end before this envelope can never matter
		// again; envelopes only move forward.
		for idx < len(timeline) && !timeline[idx].End.After(envStart) {
			idx++
		}

		cursor := envStart
		for i := idx; i < len(timeline); i++ {
			busy := timeline[i]
			if !busy.Start.Before(envEnd) {
				break
			}
			if busy.Start.After(cursor) {
				slots = appendSlot(slots, cursor, minTime(busy.Start, envEnd), c.MinDuration)
			}
			if busy.End.After(cursor) {
				cursor = busy.End
			}
			if !cursor.Before(envEnd) {
				break
			}
		}
		if cursor.Before(envEnd) {
			slots = appendSlot(slots, cursor, envEnd, c.MinDuration)
		}
	}

	return slots, nil
}

// appendSlot snaps the gap inward to whole minutes and keeps it if it still
// meets the minimum duration.
func appendSlot(slots []Slot, start, end time.Time, minDuration time.Duration) []Slot {
	start = ceilMinute(start)
	end = floorMinute(end)
	if end.Sub(start) >= minDuration {
		slots = append(slots, Slot{Start: start, End: end})
	}
	return slots
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

func ceilMinute(t time.Time) time.Time {
	truncated := t.Truncate(time.Minute)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Minute)
}

func floorMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
