package enums

import (
	"fmt"
	"time"
)

// Timeframe bounds the statistics window.
type Timeframe string

const (
	TimeframeAll   Timeframe = "all"
	TimeframeToday Timeframe = "today"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

var validTimeframes = []Timeframe{
	TimeframeAll,
	TimeframeToday,
	TimeframeWeek,
	TimeframeMonth,
	TimeframeYear,
}

// String implements fmt.Stringer.
func (t Timeframe) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Timeframe.
func (t Timeframe) IsValid() bool {
	for _, candidate := range validTimeframes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeframe converts raw input into a Timeframe. Empty input
// means the unbounded window.
func ParseTimeframe(value string) (Timeframe, error) {
	if value == "" {
		return TimeframeAll, nil
	}
	for _, candidate := range validTimeframes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid timeframe %q", value)
}

// Start returns the inclusive lower bound of the window ending at now.
func (t Timeframe) Start(now time.Time) time.Time {
	switch t {
	case TimeframeToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}
