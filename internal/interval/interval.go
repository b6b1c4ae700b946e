package interval

import (
	"fmt"
	"time"
)

// Interval represents a half-open time range [Start, End).
// A valid interval always satisfies Start < End.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsValid reports whether the interval has positive length.
func (iv Interval) IsValid() bool {
	return iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals ([a,b) and [b,c)) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether other lies entirely within the interval.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// String returns a compact representation for logs and test failures.
func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}
