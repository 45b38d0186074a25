package timeseries

import (
	"math"
	"testing"
	"time"
)

func rawSeries(realization int, isRate bool, points ...float64) RawSeries {
	// points are (day, value) pairs on a January 2023 timeline
	s := RawSeries{
		Realization: realization,
		Metadata:    VectorMetadata{Unit: "SM3", IsRate: isRate},
	}
	for i := 0; i < len(points); i += 2 {
		s.Timestamps = append(s.Timestamps, date(2023, 1, int(points[i])))
		s.Values = append(s.Values, points[i+1])
	}
	return s
}

func TestResampleCumulativeInterpolation(t *testing.T) {
	s := rawSeries(0, false, 1, 100, 3, 300)

	grid := []time.Time{date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 3)}
	rs := Resample(s, grid)

	expected := []float64{100, 200, 300}
	for i := range grid {
		if !rs.Present[i] {
			t.Fatalf("Grid point %d unexpectedly absent", i)
		}
		if math.Abs(rs.Values[i]-expected[i]) > 1e-9 {
			t.Errorf("Grid point %d: expected %v, got %v", i, expected[i], rs.Values[i])
		}
	}
}

func TestResampleCumulativeNoExtrapolation(t *testing.T) {
	s := rawSeries(0, false, 2, 10, 4, 20)

	grid := []time.Time{date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 4), date(2023, 1, 5)}
	rs := Resample(s, grid)

	if rs.Present[0] {
		t.Error("Grid point before first raw point should be absent")
	}
	if rs.Present[3] {
		t.Error("Grid point after last raw point should be absent")
	}
	if !rs.Present[1] || !rs.Present[2] {
		t.Error("In-range grid points should be present")
	}
}

func TestResampleRateStepHold(t *testing.T) {
	s := rawSeries(0, true, 2, 5, 5, 8)

	tests := []struct {
		day     int
		want    float64
		present bool
	}{
		{1, 0, false}, // before first raw point
		{2, 5, true},
		{3, 5, true}, // held from day 2
		{4, 5, true},
		{5, 8, true},
		{7, 8, true}, // held past the last raw point
	}

	for _, tt := range tests {
		rs := Resample(s, []time.Time{date(2023, 1, tt.day)})
		if rs.Present[0] != tt.present {
			t.Errorf("Day %d: expected present=%v, got %v", tt.day, tt.present, rs.Present[0])
			continue
		}
		if tt.present && rs.Values[0] != tt.want {
			t.Errorf("Day %d: expected %v, got %v", tt.day, tt.want, rs.Values[0])
		}
	}
}

func TestResampleIdempotence(t *testing.T) {
	// A series already defined exactly on the target grid comes back unchanged.
	for _, isRate := range []bool{true, false} {
		s := rawSeries(3, isRate, 1, 10, 2, 20, 3, 30)
		rs := Resample(s, s.Timestamps)
		for i := range s.Timestamps {
			if !rs.Present[i] {
				t.Fatalf("isRate=%v: point %d absent", isRate, i)
			}
			if rs.Values[i] != s.Values[i] {
				t.Errorf("isRate=%v: point %d changed from %v to %v", isRate, i, s.Values[i], rs.Values[i])
			}
		}
	}
}

func TestResampleSinglePoint(t *testing.T) {
	grid := []time.Time{date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 3)}

	// Cumulative: in-range means exactly the raw timestamp.
	cumulative := Resample(rawSeries(0, false, 2, 42), grid)
	if cumulative.Present[0] || cumulative.Present[2] {
		t.Error("Cumulative single-point series should be absent off the raw timestamp")
	}
	if !cumulative.Present[1] || cumulative.Values[1] != 42 {
		t.Errorf("Expected 42 at the raw timestamp, got present=%v value=%v", cumulative.Present[1], cumulative.Values[1])
	}

	// Rate: held from the raw point onward.
	rate := Resample(rawSeries(0, true, 2, 42), grid)
	if rate.Present[0] {
		t.Error("Rate series should be absent before its first raw point")
	}
	for i := 1; i < 3; i++ {
		if !rate.Present[i] || rate.Values[i] != 42 {
			t.Errorf("Grid point %d: expected held value 42, got present=%v value=%v", i, rate.Present[i], rate.Values[i])
		}
	}
}

func TestResampleEmptySeries(t *testing.T) {
	grid := []time.Time{date(2023, 1, 1), date(2023, 1, 2)}
	rs := Resample(RawSeries{Realization: 7}, grid)

	if len(rs.Present) != len(grid) {
		t.Fatalf("Expected %d points, got %d", len(grid), len(rs.Present))
	}
	for i, present := range rs.Present {
		if present {
			t.Errorf("Grid point %d should be absent for an empty series", i)
		}
	}
}

func TestValueAt(t *testing.T) {
	cumulative := rawSeries(0, false, 1, 0, 3, 100)

	if v, ok := ValueAt(cumulative, date(2023, 1, 2)); !ok || math.Abs(v-50) > 1e-9 {
		t.Errorf("Expected midpoint 50, got %v (ok=%v)", v, ok)
	}
	if _, ok := ValueAt(cumulative, date(2023, 1, 4)); ok {
		t.Error("Expected absent past the last cumulative point")
	}

	rate := rawSeries(0, true, 1, 0, 3, 100)
	if v, ok := ValueAt(rate, date(2023, 1, 10)); !ok || v != 100 {
		t.Errorf("Expected held 100, got %v (ok=%v)", v, ok)
	}
	if _, ok := ValueAt(RawSeries{}, date(2023, 1, 1)); ok {
		t.Error("Expected absent for empty series")
	}
}

func TestRawSeriesValidate(t *testing.T) {
	valid := rawSeries(0, false, 1, 1, 2, 2)
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	outOfOrder := RawSeries{
		Timestamps: []time.Time{date(2023, 1, 2), date(2023, 1, 1)},
		Values:     []float64{1, 2},
	}
	if err := outOfOrder.Validate(); err == nil {
		t.Error("Expected error for out-of-order timestamps")
	}

	mismatched := RawSeries{Timestamps: []time.Time{date(2023, 1, 1)}}
	if err := mismatched.Validate(); err == nil {
		t.Error("Expected error for length mismatch")
	}

	negative := RawSeries{Realization: -1}
	if err := negative.Validate(); err == nil {
		t.Error("Expected error for negative realization id")
	}
}
