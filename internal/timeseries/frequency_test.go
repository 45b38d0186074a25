package timeseries

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    Frequency
		wantErr bool
	}{
		{"DAILY", FrequencyDaily, false},
		{"WEEKLY", FrequencyWeekly, false},
		{"MONTHLY", FrequencyMonthly, false},
		{"QUARTERLY", FrequencyQuarterly, false},
		{"YEARLY", FrequencyYearly, false},
		{"daily", FrequencyDaily, false},
		{"", "", true},
		{"HOURLY", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFrequency) {
					t.Fatalf("Expected ErrInvalidFrequency for %q, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFrequencyTruncate(t *testing.T) {
	input := time.Date(2023, 8, 17, 13, 45, 30, 0, time.UTC)

	tests := []struct {
		freq     Frequency
		expected time.Time
	}{
		{FrequencyDaily, date(2023, 8, 17)},
		{FrequencyWeekly, date(2023, 8, 14)}, // Monday of that week
		{FrequencyMonthly, date(2023, 8, 1)},
		{FrequencyQuarterly, date(2023, 7, 1)},
		{FrequencyYearly, date(2023, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			got := tt.freq.Truncate(input)
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFrequencyGrid(t *testing.T) {
	tests := []struct {
		name     string
		freq     Frequency
		start    time.Time
		end      time.Time
		expected []time.Time
	}{
		{
			name:  "daily spans floor to ceil",
			freq:  FrequencyDaily,
			start: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
			end:   time.Date(2023, 1, 3, 6, 0, 0, 0, time.UTC),
			expected: []time.Time{
				date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 3), date(2023, 1, 4),
			},
		},
		{
			name:  "monthly calendar boundaries",
			freq:  FrequencyMonthly,
			start: date(2023, 1, 15),
			end:   date(2023, 3, 20),
			expected: []time.Time{
				date(2023, 1, 1), date(2023, 2, 1), date(2023, 3, 1), date(2023, 4, 1),
			},
		},
		{
			name:  "yearly",
			freq:  FrequencyYearly,
			start: date(2020, 6, 1),
			end:   date(2022, 2, 1),
			expected: []time.Time{
				date(2020, 1, 1), date(2021, 1, 1), date(2022, 1, 1), date(2023, 1, 1),
			},
		},
		{
			name:     "start on boundary equals end",
			freq:     FrequencyDaily,
			start:    date(2023, 5, 10),
			end:      date(2023, 5, 10),
			expected: []time.Time{date(2023, 5, 10)},
		},
		{
			name:  "quarterly",
			freq:  FrequencyQuarterly,
			start: date(2023, 2, 10),
			end:   date(2023, 8, 1),
			expected: []time.Time{
				date(2023, 1, 1), date(2023, 4, 1), date(2023, 7, 1), date(2023, 10, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := tt.freq.Grid(tt.start, tt.end)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(grid) != len(tt.expected) {
				t.Fatalf("Expected %d grid points, got %d: %v", len(tt.expected), len(grid), grid)
			}
			for i := range grid {
				if !grid[i].Equal(tt.expected[i]) {
					t.Errorf("Grid point %d: expected %v, got %v", i, tt.expected[i], grid[i])
				}
			}
			for i := 1; i < len(grid); i++ {
				if !grid[i].After(grid[i-1]) {
					t.Errorf("Grid not strictly increasing at index %d", i)
				}
			}
		})
	}
}

func TestFrequencyGridInvalid(t *testing.T) {
	if _, err := Frequency("HOURLY").Grid(date(2023, 1, 1), date(2023, 1, 2)); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Expected ErrInvalidFrequency, got %v", err)
	}
	if _, err := FrequencyDaily.Grid(date(2023, 1, 2), date(2023, 1, 1)); err == nil {
		t.Error("Expected error for reversed range")
	}
}
