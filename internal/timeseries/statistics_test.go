package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"
)

func singlePointSet(values []float64, present []bool) AlignedSet {
	set := AlignedSet{
		Grid:         []time.Time{date(2023, 1, 1)},
		Realizations: make([]int, len(values)),
		Values:       make([][]float64, len(values)),
		Present:      make([][]bool, len(values)),
	}
	for i, v := range values {
		set.Realizations[i] = i
		set.Values[i] = []float64{v}
		set.Present[i] = []bool{present[i]}
	}
	return set
}

func TestAggregateKnownInput(t *testing.T) {
	set := singlePointSet([]float64{2, 1, 3}, []bool{true, true, true})

	result, err := Aggregate(set, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		fn   StatisticFunction
		want float64
	}{
		{StatisticMean, 2},
		{StatisticMin, 1},
		{StatisticMax, 3},
		{StatisticStd, math.Sqrt(2.0 / 3.0)}, // population std of {1,2,3}
		{StatisticP50, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			got := result.Values[tt.fn][0]
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
	if !result.Defined[0] {
		t.Error("Expected defined grid point")
	}
}

func TestAggregateDefaultsToAllFunctions(t *testing.T) {
	set := singlePointSet([]float64{1}, []bool{true})

	result, err := Aggregate(set, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Values) != len(AllStatisticFunctions()) {
		t.Errorf("Expected %d statistics, got %d", len(AllStatisticFunctions()), len(result.Values))
	}
}

func TestAggregateRequestedSubset(t *testing.T) {
	set := singlePointSet([]float64{1, 2}, []bool{true, true})

	result, err := Aggregate(set, []StatisticFunction{StatisticMean})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Values) != 1 {
		t.Errorf("Expected only MEAN, got %v", result.Values)
	}
	if result.Values[StatisticMean][0] != 1.5 {
		t.Errorf("Expected mean 1.5, got %v", result.Values[StatisticMean][0])
	}
}

func TestAggregateUndefinedPoint(t *testing.T) {
	// Second grid point has zero contributing realizations: explicit
	// undefined marker, never a silently dropped point.
	set := AlignedSet{
		Grid:         []time.Time{date(2023, 1, 1), date(2023, 1, 2)},
		Realizations: []int{0, 1},
		Values:       [][]float64{{1, 0}, {2, 0}},
		Present:      [][]bool{{true, false}, {true, false}},
	}

	result, err := Aggregate(set, []StatisticFunction{StatisticMean})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Values[StatisticMean]) != 2 {
		t.Fatalf("Result length must equal grid length")
	}
	if !result.Defined[0] || result.Defined[1] {
		t.Errorf("Expected defined=[true false], got %v", result.Defined)
	}
}

func TestAggregateEmptyGrid(t *testing.T) {
	set := AlignedSet{Realizations: []int{0}, Values: [][]float64{{}}, Present: [][]bool{{}}}
	if _, err := Aggregate(set, nil); !errors.Is(err, ErrNoComputableStatistics) {
		t.Errorf("Expected ErrNoComputableStatistics, got %v", err)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	// Linear interpolation between order statistics, pinned as the
	// documented convention.
	sorted := []float64{10, 20, 30, 40}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{10, 13},
		{50, 25},
		{90, 37},
		{100, 40},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("P%v: expected %v, got %v", tt.p, tt.want, got)
		}
	}

	if got := percentile([]float64{7}, 90); got != 7 {
		t.Errorf("Single sample: expected 7, got %v", got)
	}
}

func TestParseStatisticFunction(t *testing.T) {
	if _, err := ParseStatisticFunction("MEAN"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if fn, err := ParseStatisticFunction("p10"); err != nil || fn != StatisticP10 {
		t.Errorf("Expected P10 for lowercase input, got %v, %v", fn, err)
	}
	if fn, err := ParseStatisticFunction("stddev"); err != nil || fn != StatisticStd {
		t.Errorf("Expected STD for stddev alias, got %v, %v", fn, err)
	}
	if _, err := ParseStatisticFunction("MEDIAN"); err == nil {
		t.Error("Expected error for unknown statistic")
	}
}
