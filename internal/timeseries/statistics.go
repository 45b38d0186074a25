package timeseries

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// StatisticFunction identifies a cross-realization statistic.
type StatisticFunction string

const (
	StatisticMean StatisticFunction = "MEAN"
	StatisticMin  StatisticFunction = "MIN"
	StatisticMax  StatisticFunction = "MAX"
	StatisticP10  StatisticFunction = "P10"
	StatisticP50  StatisticFunction = "P50"
	StatisticP90  StatisticFunction = "P90"
	StatisticStd  StatisticFunction = "STD"
)

// AllStatisticFunctions returns every supported statistic, in stable order.
func AllStatisticFunctions() []StatisticFunction {
	return []StatisticFunction{
		StatisticMean, StatisticMin, StatisticMax,
		StatisticP10, StatisticP50, StatisticP90, StatisticStd,
	}
}

// ParseStatisticFunction parses a statistic name, case-insensitively.
// "STDDEV" is accepted as an alias for STD.
func ParseStatisticFunction(s string) (StatisticFunction, error) {
	upper := strings.ToUpper(s)
	if upper == "STDDEV" {
		return StatisticStd, nil
	}
	switch f := StatisticFunction(upper); f {
	case StatisticMean, StatisticMin, StatisticMax, StatisticP10, StatisticP50, StatisticP90, StatisticStd:
		return f, nil
	default:
		return "", fmt.Errorf("unknown statistic function %q", s)
	}
}

// StatisticResult holds, per requested statistic, a value sequence aligned
// with the grid. Defined marks grid points with at least one contributing
// realization; where Defined is false every statistic at that point is
// undefined and the Values entries carry no meaning.
type StatisticResult struct {
	Grid    []time.Time
	Defined []bool
	Values  map[StatisticFunction][]float64
}

// Aggregate computes the requested statistics pointwise over the aligned set.
// For each grid timestamp the present values across realizations form the
// input multiset; a timestamp with no present values is marked undefined
// rather than dropped. An empty list of functions means compute everything.
// An aligned set with no grid points at all returns ErrNoComputableStatistics.
func Aggregate(set AlignedSet, functions []StatisticFunction) (*StatisticResult, error) {
	if len(set.Grid) == 0 {
		return nil, ErrNoComputableStatistics
	}
	if len(functions) == 0 {
		functions = AllStatisticFunctions()
	}

	result := &StatisticResult{
		Grid:    set.Grid,
		Defined: make([]bool, len(set.Grid)),
		Values:  make(map[StatisticFunction][]float64, len(functions)),
	}
	for _, fn := range functions {
		result.Values[fn] = make([]float64, len(set.Grid))
	}

	samples := make([]float64, 0, len(set.Realizations))
	for k := range set.Grid {
		samples = samples[:0]
		for i := range set.Realizations {
			if set.Present[i][k] {
				samples = append(samples, set.Values[i][k])
			}
		}
		if len(samples) == 0 {
			continue
		}
		result.Defined[k] = true

		sort.Float64s(samples)
		for _, fn := range functions {
			result.Values[fn][k] = compute(fn, samples)
		}
	}
	return result, nil
}

// compute evaluates one statistic over a sorted, non-empty sample set.
func compute(fn StatisticFunction, sorted []float64) float64 {
	switch fn {
	case StatisticMin:
		return sorted[0]
	case StatisticMax:
		return sorted[len(sorted)-1]
	case StatisticMean:
		return mean(sorted)
	case StatisticStd:
		return stdDev(sorted)
	case StatisticP10:
		return percentile(sorted, 10)
	case StatisticP50:
		return percentile(sorted, 50)
	case StatisticP90:
		return percentile(sorted, 90)
	default:
		return 0
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	m := mean(values)
	sumSquares := 0.0
	for _, v := range values {
		d := v - m
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// percentile uses linear interpolation between order statistics: the rank of
// percentile p over n sorted samples is p/100*(n-1), interpolating between
// the two neighboring samples when the rank is fractional. The same rule
// applies to every percentile request.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
