package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teemow/avail/internal/availability"
)

var durationPattern = regexp.MustCompile(`^(\d+)([wdhm])$`)

// ParseShorthand parses the <int>[wdhm] duration shorthand used by the
// --window and --duration flags.
func ParseShorthand(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q (expected <int>[wdhm], e.g. 1w or 30m)", s)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch m[2] {
	case "w":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	default:
		return time.Duration(n) * time.Minute, nil
	}
}

// ParseClock parses a time of day in either 12-hour ("9:00am", "5pm") or
// 24-hour ("17:00") form.
func ParseClock(s string) (availability.Clock, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{"3:04PM", "3PM", "15:04"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return availability.Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return availability.Clock{}, fmt.Errorf("invalid time of day %q (expected forms like 9:00am or 17:00)", s)
}

// ParseDate parses an MM/DD/YYYY calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("01/02/2006", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected MM/DD/YYYY)", s)
	}
	return t, nil
}

// Location resolves the configured timezone name. "Local" or an empty value
// selects the system timezone.
func (c *Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
