// Package availability searches a merged busy timeline for free slots that
// satisfy a set of constraints: a calendar-date window, daily work-hour
// bounds, a weekend policy, and a minimum slot duration.
//
// The finder returns maximal gaps rather than exact-duration chunks, so the
// caller may place a meeting anywhere inside a returned slot.
package availability
