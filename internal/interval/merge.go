package interval

import (
	"slices"
)

// Timeline is an ordered sequence of non-overlapping intervals sorted
// ascending by start. Adjacent entries never touch: for consecutive
// intervals i and j, i.End < j.Start holds strictly.
type Timeline []Interval

// Merge combines arbitrary intervals into a Timeline using a single
// sweep over the start-sorted input. Touching or overlapping intervals are
// coalesced. Merge is idempotent and merging an empty input yields an empty
// timeline. The input slice is not modified.
func Merge(intervals []Interval) Timeline {
	if len(intervals) == 0 {
		return Timeline{}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	// Ties on Start are broken by End so the output is deterministic.
	slices.SortFunc(sorted, func(a, b Interval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	merged := make(Timeline, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if !next.Start.After(cur.End) {
			if next.End.After(cur.End) {
				cur.End = next.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}

// BusyWithin reports whether any part of the timeline overlaps iv.
func (t Timeline) BusyWithin(iv Interval) bool {
	for _, busy := range t {
		if busy.Start.Compare(iv.End) >= 0 {
			break
		}
		if busy.Overlaps(iv) {
			return true
		}
	}
	return false
}
