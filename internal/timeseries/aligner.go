package timeseries

import (
	"sort"
	"time"
)

// AlignRaw builds the aligned set for raw mode: the grid is the exact
// intersection of raw timestamp sets, so a timestamp survives only if every
// realization has a raw point at exactly that instant. Realizations with no
// points are skipped when forming the intersection and get an all-absent row.
// An empty intersection yields an empty grid, not an error.
func AlignRaw(series []RawSeries) AlignedSet {
	var sets [][]time.Time
	for _, s := range series {
		if !s.Empty() {
			sets = append(sets, s.Timestamps)
		}
	}
	grid := IntersectTimestamps(sets)

	set := AlignedSet{
		Grid:         grid,
		Realizations: make([]int, len(series)),
		Values:       make([][]float64, len(series)),
		Present:      make([][]bool, len(series)),
	}
	for i, s := range series {
		set.Realizations[i] = s.Realization
		values := make([]float64, len(grid))
		present := make([]bool, len(grid))
		if !s.Empty() {
			byTime := make(map[int64]float64, len(s.Timestamps))
			for k, ts := range s.Timestamps {
				byTime[ts.UnixNano()] = s.Values[k]
			}
			for k, ts := range grid {
				// Every non-empty realization covers the whole
				// intersection grid by construction.
				values[k] = byTime[ts.UnixNano()]
				present[k] = true
			}
		}
		set.Values[i] = values
		set.Present[i] = present
	}
	return set
}

// AlignResampled builds the aligned set for resampled mode: the grid covers
// the union of all realizations' raw ranges (overall minimum start to overall
// maximum end), so data from long-running realizations is never discarded
// because a shorter realization ended early. Each realization is resampled
// independently onto the full grid and its per-point absence preserved.
func AlignResampled(series []RawSeries, freq Frequency) (AlignedSet, error) {
	start, end, ok := UnionRange(series)
	if !ok {
		// No realization has any data.
		set := AlignedSet{
			Realizations: make([]int, len(series)),
			Values:       make([][]float64, len(series)),
			Present:      make([][]bool, len(series)),
		}
		for i, s := range series {
			set.Realizations[i] = s.Realization
			set.Values[i] = []float64{}
			set.Present[i] = []bool{}
		}
		return set, nil
	}

	grid, err := freq.Grid(start, end)
	if err != nil {
		return AlignedSet{}, err
	}

	set := AlignedSet{
		Grid:         grid,
		Realizations: make([]int, len(series)),
		Values:       make([][]float64, len(series)),
		Present:      make([][]bool, len(series)),
	}
	for i, s := range series {
		rs := Resample(s, grid)
		set.Realizations[i] = s.Realization
		set.Values[i] = rs.Values
		set.Present[i] = rs.Present
	}
	return set, nil
}

// IntersectTimestamps returns the sorted intersection of the given timestamp
// sets. Each set is assumed internally duplicate-free.
func IntersectTimestamps(sets [][]time.Time) []time.Time {
	if len(sets) == 0 {
		return nil
	}
	counts := make(map[int64]int)
	for _, set := range sets {
		for _, ts := range set {
			counts[ts.UnixNano()]++
		}
	}
	var grid []time.Time
	for nano, c := range counts {
		if c == len(sets) {
			grid = append(grid, time.Unix(0, nano).UTC())
		}
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].Before(grid[j]) })
	return grid
}

// UnionRange returns the overall minimum start and maximum end across all
// non-empty series. ok is false when every series is empty.
func UnionRange(series []RawSeries) (start, end time.Time, ok bool) {
	for _, s := range series {
		if s.Empty() {
			continue
		}
		first, last := s.Timestamps[0], s.Timestamps[len(s.Timestamps)-1]
		if !ok {
			start, end = first, last
			ok = true
			continue
		}
		if first.Before(start) {
			start = first
		}
		if last.After(end) {
			end = last
		}
	}
	return start, end, ok
}
