package ensemble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/timeseries"
)

func memorySeries(realization int) timeseries.RawSeries {
	return timeseries.RawSeries{
		Realization: realization,
		Timestamps: []time.Time{
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		Values:   []float64{1, 2},
		Metadata: timeseries.VectorMetadata{Unit: "SM3", IsRate: false},
	}
}

func TestMemoryStoreFetchVector(t *testing.T) {
	store := NewMemoryStore()
	store.AddSeries("case-1", "iter-0", "FOPT", memorySeries(1))
	store.AddSeries("case-1", "iter-0", "FOPT", memorySeries(0))

	series, err := store.FetchVector(context.Background(), "case-1", "iter-0", "FOPT", nil)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 0, series[0].Realization)
	assert.Equal(t, 1, series[1].Realization)

	subset, err := store.FetchVector(context.Background(), "case-1", "iter-0", "FOPT", []int{1})
	require.NoError(t, err)
	require.Len(t, subset, 1)
	assert.Equal(t, 1, subset[0].Realization)
}

func TestMemoryStoreUnknownVector(t *testing.T) {
	store := NewMemoryStore()
	store.AddSeries("case-1", "iter-0", "FOPT", memorySeries(0))

	_, err := store.FetchVector(context.Background(), "case-1", "iter-0", "NOPE", nil)
	require.Error(t, err)

	var unavailable *UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.True(t, unavailable.NotFound())
}

func TestMemoryStoreVectorNames(t *testing.T) {
	store := NewMemoryStore()
	store.AddSeries("case-1", "iter-0", "WOPR:OP_1", memorySeries(0))
	store.AddSeries("case-1", "iter-0", "FOPT", memorySeries(0))
	store.SetDescriptiveName("FOPT", "Oil Production Total")

	names, err := store.FetchVectorNames(context.Background(), "case-1", "iter-0")
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "FOPT", names[0].Name)
	assert.Equal(t, "Oil Production Total", names[0].DescriptiveName)
	assert.Equal(t, "WOPR:OP_1", names[1].Name)
	assert.Equal(t, "WOPR:OP_1", names[1].DescriptiveName)
}

func TestMemoryStoreRealizationTimestamps(t *testing.T) {
	store := NewMemoryStore()
	store.AddSeries("case-1", "iter-0", "FOPT", memorySeries(0))
	store.AddSeries("case-1", "iter-0", "FOPT", memorySeries(2))

	sets, err := store.FetchRealizationTimestamps(context.Background(), "case-1", "iter-0", nil)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, 0, sets[0].Realization)
	assert.Equal(t, 2, sets[1].Realization)
	assert.Len(t, sets[0].Timestamps, 2)
}

func TestCacheSeriesKey(t *testing.T) {
	c := &CachedStore{keys: config.CacheConfig{KeyPrefix: "webviz"}}

	assert.Equal(t, "webviz:series:case-1:iter-0:FOPT:all",
		c.seriesKey("case-1", "iter-0", "FOPT", nil))

	// Realization order must not change the key
	assert.Equal(t,
		c.seriesKey("case-1", "iter-0", "FOPT", []int{3, 1, 2}),
		c.seriesKey("case-1", "iter-0", "FOPT", []int{1, 2, 3}))
	assert.Equal(t, "webviz:series:case-1:iter-0:FOPT:1,2,3",
		c.seriesKey("case-1", "iter-0", "FOPT", []int{3, 1, 2}))
}

func TestCacheSeriesCodecExactTimestamps(t *testing.T) {
	// Sub-millisecond precision must survive the cache round-trip, or a
	// cached series could miss the exact-match intersection against a
	// freshly fetched one
	in := []timeseries.RawSeries{{
		Realization: 4,
		Timestamps: []time.Time{
			time.Date(2023, 1, 1, 0, 0, 0, 1500, time.UTC),
			time.Date(2023, 1, 2, 12, 30, 15, 123456789, time.UTC),
		},
		Values:   []float64{1, 2},
		Metadata: timeseries.VectorMetadata{Unit: "SM3", IsRate: true},
	}}

	data, err := encodeSeries(in)
	require.NoError(t, err)

	out, err := decodeSeries(data)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Realization, out[0].Realization)
	assert.Equal(t, in[0].Metadata, out[0].Metadata)
	assert.Equal(t, in[0].Values, out[0].Values)
	require.Len(t, out[0].Timestamps, 2)
	assert.True(t, in[0].Timestamps[0].Equal(out[0].Timestamps[0]))
	assert.True(t, in[0].Timestamps[1].Equal(out[0].Timestamps[1]))
}
