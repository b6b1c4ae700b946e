// Package engine orchestrates the availability search: it fans fetches out
// across the selected calendars, normalizes and merges the results into one
// busy timeline, and runs the free-slot finder over it. It also owns the
// hold-reservation flow, which re-verifies a slot against fresh data before
// writing a hold event.
package engine
