package timeseries

import "time"

// Normalize subtracts, per realization, the value at the reference timestamp
// from every point of that realization's aligned row. The baseline is sampled
// from the realization's original raw series with the usual rate/cumulative
// policy, not from the already-resampled grid. A realization with no valid
// baseline (reference outside its raw range) becomes entirely absent; absence
// never defaults to zero.
func Normalize(set AlignedSet, raws []RawSeries, reference time.Time) AlignedSet {
	rawByRealization := make(map[int]RawSeries, len(raws))
	for _, s := range raws {
		rawByRealization[s.Realization] = s
	}

	out := AlignedSet{
		Grid:         set.Grid,
		Realizations: set.Realizations,
		Values:       make([][]float64, len(set.Values)),
		Present:      make([][]bool, len(set.Present)),
	}
	for i, realization := range set.Realizations {
		values := make([]float64, len(set.Grid))
		present := make([]bool, len(set.Grid))

		baseline, ok := ValueAt(rawByRealization[realization], reference)
		if ok {
			for k := range set.Grid {
				if set.Present[i][k] {
					values[k] = set.Values[i][k] - baseline
					present[k] = true
				}
			}
		}
		out.Values[i] = values
		out.Present[i] = present
	}
	return out
}

// NormalizeSeries applies the same baseline subtraction to a single
// realization's series.
func NormalizeSeries(s ResampledSeries, raw RawSeries, reference time.Time) ResampledSeries {
	out := ResampledSeries{
		Realization: s.Realization,
		Timestamps:  s.Timestamps,
		Values:      make([]float64, len(s.Values)),
		Present:     make([]bool, len(s.Present)),
	}
	baseline, ok := ValueAt(raw, reference)
	if !ok {
		return out
	}
	for i := range s.Values {
		if s.Present[i] {
			out.Values[i] = s.Values[i] - baseline
			out.Present[i] = true
		}
	}
	return out
}
