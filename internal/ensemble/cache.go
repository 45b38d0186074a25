package ensemble

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// CachedStore wraps a Store with a Redis read-through cache. Series
// payloads are stored as snappy-compressed JSON. Cache failures are
// logged and fall through to the upstream store, never to the caller.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	keys   config.CacheConfig
	logger *logging.Logger
}

// NewCachedStore connects to Redis and wraps inner with a cache layer
func NewCachedStore(inner Store, cfg config.CacheConfig, logger *logging.Logger) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		// Fallback to simple options
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    cfg.TTL,
		keys:   cfg,
		logger: logger,
	}, nil
}

// cachedRawSeries is the cache payload shape for one realization.
// Timestamps are UnixNano so the round-trip is exact for alignment.
type cachedRawSeries struct {
	Realization int       `json:"realization"`
	Timestamps  []int64   `json:"timestamps"`
	Values      []float64 `json:"values"`
	Unit        string    `json:"unit"`
	IsRate      bool      `json:"is_rate"`
}

// FetchVectorNames delegates to the upstream; name listings are cheap
// enough that caching them buys little
func (c *CachedStore) FetchVectorNames(ctx context.Context, caseID, ensembleName string) ([]VectorDescription, error) {
	return c.inner.FetchVectorNames(ctx, caseID, ensembleName)
}

// FetchVectorMetadata delegates to the upstream
func (c *CachedStore) FetchVectorMetadata(ctx context.Context, caseID, ensembleName, vectorName string) (*timeseries.VectorMetadata, error) {
	return c.inner.FetchVectorMetadata(ctx, caseID, ensembleName, vectorName)
}

// FetchVector serves series from the cache when possible
func (c *CachedStore) FetchVector(ctx context.Context, caseID, ensembleName, vectorName string, realizations []int) ([]timeseries.RawSeries, error) {
	key := c.seriesKey(caseID, ensembleName, vectorName, realizations)

	if series, ok := c.get(ctx, key); ok {
		return series, nil
	}

	series, err := c.inner.FetchVector(ctx, caseID, ensembleName, vectorName, realizations)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, series)
	return series, nil
}

// FetchRealizationTimestamps delegates to the upstream
func (c *CachedStore) FetchRealizationTimestamps(ctx context.Context, caseID, ensembleName string, realizations []int) ([]RealizationTimestamps, error) {
	return c.inner.FetchRealizationTimestamps(ctx, caseID, ensembleName, realizations)
}

// Invalidate drops all cached series for one ensemble. Called when an
// ensemble-updated event arrives.
func (c *CachedStore) Invalidate(ctx context.Context, caseID, ensembleName string) error {
	pattern := c.keys.CacheKey("series", caseID, ensembleName) + ":*"

	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated cached series",
		"case", caseID,
		"ensemble", ensembleName,
		"keys", deleted)
	return nil
}

// Close releases the Redis connection
func (c *CachedStore) Close() error {
	return c.client.Close()
}

func (c *CachedStore) get(ctx context.Context, key string) ([]timeseries.RawSeries, bool) {
	compressed, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	series, err := decodeSeries(compressed)
	if err != nil {
		c.logger.Warn("Cache payload corrupt", "key", key, "error", err)
		return nil, false
	}
	return series, true
}

func (c *CachedStore) put(ctx context.Context, key string, series []timeseries.RawSeries) {
	compressed, err := encodeSeries(series)
	if err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, compressed, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

// encodeSeries packs raw series as snappy-compressed JSON
func encodeSeries(series []timeseries.RawSeries) ([]byte, error) {
	cached := make([]cachedRawSeries, len(series))
	for i, s := range series {
		timestamps := make([]int64, len(s.Timestamps))
		for j, t := range s.Timestamps {
			timestamps[j] = t.UnixNano()
		}
		cached[i] = cachedRawSeries{
			Realization: s.Realization,
			Timestamps:  timestamps,
			Values:      s.Values,
			Unit:        s.Metadata.Unit,
			IsRate:      s.Metadata.IsRate,
		}
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

func decodeSeries(compressed []byte) ([]timeseries.RawSeries, error) {
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, err
	}

	var cached []cachedRawSeries
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	series := make([]timeseries.RawSeries, len(cached))
	for i, cs := range cached {
		timestamps := make([]time.Time, len(cs.Timestamps))
		for j, ns := range cs.Timestamps {
			timestamps[j] = time.Unix(0, ns).UTC()
		}
		series[i] = timeseries.RawSeries{
			Realization: cs.Realization,
			Timestamps:  timestamps,
			Values:      cs.Values,
			Metadata:    timeseries.VectorMetadata{Unit: cs.Unit, IsRate: cs.IsRate},
		}
	}
	return series, nil
}

// seriesKey builds a deterministic cache key for one fetch. The
// realization set is part of the key so partial fetches never alias a
// full fetch.
func (c *CachedStore) seriesKey(caseID, ensembleName, vectorName string, realizations []int) string {
	set := "all"
	if realizations != nil {
		sorted := make([]int, len(realizations))
		copy(sorted, realizations)
		sort.Ints(sorted)
		parts := make([]string, len(sorted))
		for i, r := range sorted {
			parts[i] = strconv.Itoa(r)
		}
		set = strings.Join(parts, ",")
	}
	return c.keys.CacheKey("series", caseID, ensembleName, vectorName, set)
}
