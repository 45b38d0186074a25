package timeseries

import (
	"fmt"
	"time"
)

// VectorMetadata describes a named vector.
type VectorMetadata struct {
	Unit   string `json:"unit"`
	IsRate bool   `json:"is_rate"`
}

// RawSeries is one realization's data for one vector, exactly as stored
// upstream. Timestamps are strictly increasing and unique. A RawSeries is
// immutable once constructed; an empty series is valid and contributes no
// points to any alignment or statistic.
type RawSeries struct {
	Realization int            `json:"realization"`
	Timestamps  []time.Time    `json:"timestamps"`
	Values      []float64      `json:"values"`
	Metadata    VectorMetadata `json:"metadata"`
}

// Empty reports whether the series has no points.
func (s RawSeries) Empty() bool {
	return len(s.Timestamps) == 0
}

// Validate checks the RawSeries invariants: matching lengths, a non-negative
// realization id and strictly increasing timestamps.
func (s RawSeries) Validate() error {
	if s.Realization < 0 {
		return fmt.Errorf("negative realization id %d", s.Realization)
	}
	if len(s.Timestamps) != len(s.Values) {
		return fmt.Errorf("realization %d: %d timestamps but %d values",
			s.Realization, len(s.Timestamps), len(s.Values))
	}
	if err := ValidateTimestamps(s.Timestamps); err != nil {
		return fmt.Errorf("realization %d: %w", s.Realization, err)
	}
	return nil
}

// ValidateTimestamps checks that a timestamp axis is strictly
// increasing, which also rules out duplicates.
func ValidateTimestamps(timestamps []time.Time) error {
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}

// ResampledSeries is one realization's series projected onto a target grid.
// Present marks, index for index, which grid points the realization actually
// covers; gaps are never dropped from the grid.
type ResampledSeries struct {
	Realization int
	Timestamps  []time.Time
	Values      []float64
	Present     []bool
}

// FromRaw wraps a raw series as a fully present ResampledSeries.
// Used in raw mode where no resampling is requested.
func FromRaw(s RawSeries) ResampledSeries {
	present := make([]bool, len(s.Timestamps))
	for i := range present {
		present[i] = true
	}
	return ResampledSeries{
		Realization: s.Realization,
		Timestamps:  s.Timestamps,
		Values:      s.Values,
		Present:     present,
	}
}

// AlignedSet is the per-query working set: one shared grid plus one value row
// per realization, aligned index for index with the grid. Absence is explicit
// in Present, never encoded by truncation or sentinel values.
type AlignedSet struct {
	Grid         []time.Time
	Realizations []int
	Values       [][]float64
	Present      [][]bool
}

// Series extracts realization row i as a ResampledSeries sharing the grid.
func (a AlignedSet) Series(i int) ResampledSeries {
	return ResampledSeries{
		Realization: a.Realizations[i],
		Timestamps:  a.Grid,
		Values:      a.Values[i],
		Present:     a.Present[i],
	}
}
