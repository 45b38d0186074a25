package timeseries

import "time"

// Resample projects one realization's raw series onto the target grid.
//
// Rate vectors use step-function semantics: the value at a grid timestamp is
// the value of the last raw point at or before it, and grid points before the
// first raw point are absent. Cumulative vectors use linear interpolation
// between the bracketing raw points, and grid points outside
// [first_ts, last_ts] are absent. No extrapolation in either mode.
//
// An empty raw series produces an all-absent result; that is not an error.
func Resample(s RawSeries, grid []time.Time) ResampledSeries {
	out := ResampledSeries{
		Realization: s.Realization,
		Timestamps:  grid,
		Values:      make([]float64, len(grid)),
		Present:     make([]bool, len(grid)),
	}

	n := len(s.Timestamps)
	if n == 0 {
		return out
	}

	// Single forward walk; both the grid and the raw timestamps are sorted.
	j := 0
	for i, t := range grid {
		for j+1 < n && !s.Timestamps[j+1].After(t) {
			j++
		}
		v, ok := sampleAt(s, t, j)
		if ok {
			out.Values[i] = v
			out.Present[i] = true
		}
	}
	return out
}

// ValueAt samples the raw series at a single timestamp using the same
// interpolation policy as Resample. Used for baseline lookups, where sampling
// the original raw series avoids compounding grid interpolation error.
func ValueAt(s RawSeries, t time.Time) (float64, bool) {
	n := len(s.Timestamps)
	if n == 0 {
		return 0, false
	}
	j := 0
	for j+1 < n && !s.Timestamps[j+1].After(t) {
		j++
	}
	return sampleAt(s, t, j)
}

// sampleAt evaluates the series at t given j, the index of the last raw point
// at or before t (or 0 when t precedes the whole series).
func sampleAt(s RawSeries, t time.Time, j int) (float64, bool) {
	n := len(s.Timestamps)
	if t.Before(s.Timestamps[0]) {
		return 0, false
	}

	if s.Metadata.IsRate {
		// Previous-value hold.
		return s.Values[j], true
	}

	if t.After(s.Timestamps[n-1]) {
		return 0, false
	}
	if s.Timestamps[j].Equal(t) {
		return s.Values[j], true
	}

	// t lies strictly between raw points j and j+1.
	t0, t1 := s.Timestamps[j], s.Timestamps[j+1]
	v0, v1 := s.Values[j], s.Values[j+1]
	frac := float64(t.Sub(t0)) / float64(t1.Sub(t0))
	return v0 + (v1-v0)*frac, true
}
