package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-sentinel/webviz/internal/timeseries"
)

func TestNewRealizationDataResponse(t *testing.T) {
	s := timeseries.ResampledSeries{
		Realization: 4,
		Timestamps: []time.Time{
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		Values:  []float64{10, 0},
		Present: []bool{true, false},
	}

	resp := NewRealizationDataResponse(s, timeseries.VectorMetadata{Unit: "SM3/D", IsRate: true})

	assert.Equal(t, 4, resp.Realization)
	assert.Equal(t, []string{"2023-01-01T00:00:00Z", "2023-01-02T00:00:00Z"}, resp.Timestamps)
	require.NotNil(t, resp.Values[0])
	assert.Equal(t, 10.0, *resp.Values[0])
	assert.Nil(t, resp.Values[1])
	assert.Equal(t, "SM3/D", resp.Unit)
	assert.True(t, resp.IsRate)
}

func TestNewStatisticalDataResponseOrder(t *testing.T) {
	result := timeseries.StatisticResult{
		Grid:    []time.Time{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		Defined: []bool{true},
		Values: map[timeseries.StatisticFunction][]float64{
			timeseries.StatisticMean: {2},
			timeseries.StatisticMax:  {3},
		},
	}

	resp := NewStatisticalDataResponse(result,
		[]timeseries.StatisticFunction{timeseries.StatisticMax, timeseries.StatisticMean},
		timeseries.VectorMetadata{Unit: "SM3"})

	require.Len(t, resp.Statistics, 2)
	assert.Equal(t, "MAX", resp.Statistics[0].Statistic)
	assert.Equal(t, "MEAN", resp.Statistics[1].Statistic)
	assert.Equal(t, 3.0, *resp.Statistics[0].Values[0])
}

func TestMaskedValuesCopiesValues(t *testing.T) {
	values := []float64{1, 2}
	masked := maskedValues(values, []bool{true, true})

	values[0] = 99
	assert.Equal(t, 1.0, *masked[0])
}
