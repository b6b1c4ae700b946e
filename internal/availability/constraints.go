package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConstraints marks a configuration that can never produce a slot.
// It is surfaced before any calendar is fetched.
var ErrInvalidConstraints = errors.New("invalid search constraints")

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the clock as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

// On projects the clock onto a calendar day, keeping the day's location.
// Hour 24 maps to midnight of the following day, which lets DailyBounds
// express a full-day envelope.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// DailyBounds is the earliest and latest time of day considered available.
type DailyBounds struct {
	Min Clock
	Max Clock
}

// Span returns the length of the daily availability envelope.
func (b DailyBounds) Span() time.Duration {
	return time.Duration(b.Max.Minutes()-b.Min.Minutes()) * time.Minute
}

// Window is the calendar-date range of the search, inclusive on both ends.
// Start and End are midnights in the reference timezone.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	days := 0
	for day := w.Start; !day.After(w.End); day = day.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// Constraints bundles everything the finder needs to qualify a free slot.
type Constraints struct {
	Window          Window
	Daily           DailyBounds
	IncludeWeekends bool
	MinDuration     time.Duration
}

// Validate checks the constraints before any search or fetch happens.
// All failure modes wrap ErrInvalidConstraints.
func (c Constraints) Validate() error {
	if !c.Daily.Min.Before(c.Daily.Max) {
		return fmt.Errorf("%w: daily minimum %s is not before maximum %s",
			ErrInvalidConstraints, c.Daily.Min, c.Daily.Max)
	}
	if c.Window.Start.After(c.Window.End) {
		return fmt.Errorf("%w: window start %s is after end %s",
			ErrInvalidConstraints,
			c.Window.Start.Format("2006-01-02"), c.Window.End.Format("2006-01-02"))
	}
	if c.MinDuration <= 0 {
		return fmt.Errorf("%w: minimum duration %s is not positive",
			ErrInvalidConstraints, c.MinDuration)
	}
	if c.MinDuration > c.Daily.Span() {
		return fmt.Errorf("%w: minimum duration %s exceeds the daily bounds %s-%s",
			ErrInvalidConstraints, c.MinDuration, c.Daily.Min, c.Daily.Max)
	}
	return nil
}
