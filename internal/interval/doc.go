// Package interval provides the canonical time-interval model used by the
// availability engine.
//
// Provider events are normalized into half-open UTC-instant intervals in a
// single reference timezone, then merged into a sorted, non-overlapping busy
// timeline. Both operations are pure functions over their inputs and hold no
// state between invocations.
package interval
