package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// Frequency represents a resampling frequency. The absence of a frequency
// (callers pass a nil *Frequency) means raw data without resampling.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// ParseFrequency parses a frequency string, case-insensitively.
// Returns ErrInvalidFrequency for unrecognized values, including "".
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToUpper(s)); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
}

// Valid reports whether f is a recognized frequency.
func (f Frequency) Valid() bool {
	_, err := ParseFrequency(string(f))
	return err == nil
}

// Truncate rounds t down to the nearest period boundary in UTC.
// Boundaries are UTC midnight: day start for DAILY, Monday for WEEKLY,
// first of month for MONTHLY, Jan/Apr/Jul/Oct 1st for QUARTERLY and
// Jan 1st for YEARLY.
func (f Frequency) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch f {
	case FrequencyDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case FrequencyWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday numbers Sunday as 0
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case FrequencyMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case FrequencyQuarterly:
		quarterStart := time.Month(((int(t.Month())-1)/3)*3 + 1)
		return time.Date(t.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC)
	case FrequencyYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Next returns the period boundary immediately after boundary t.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Grid generates the strictly increasing sequence of calendar-aligned
// timestamps covering [start, end]. The first point is start rounded down to
// the nearest period boundary and the last is end rounded up, so the grid
// always brackets the requested range.
func (f Frequency) Grid(start, end time.Time) ([]time.Time, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, string(f))
	}
	if end.Before(start) {
		return nil, fmt.Errorf("grid range end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	end = end.UTC()
	t := f.Truncate(start)
	grid := []time.Time{t}
	for t.Before(end) {
		t = f.Next(t)
		grid = append(grid, t)
	}
	return grid, nil
}
