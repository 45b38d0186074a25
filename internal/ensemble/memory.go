package ensemble

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// MemoryStore is an in-memory Store used in tests and local development
type MemoryStore struct {
	mu          sync.RWMutex
	series      map[string]map[string][]timeseries.RawSeries // ensembleKey -> vector -> series
	descriptive map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		series:      make(map[string]map[string][]timeseries.RawSeries),
		descriptive: make(map[string]string),
	}
}

func ensembleKey(caseID, ensembleName string) string {
	return caseID + "/" + ensembleName
}

// AddSeries registers one realization series for a vector
func (m *MemoryStore) AddSeries(caseID, ensembleName, vectorName string, s timeseries.RawSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ensembleKey(caseID, ensembleName)
	if m.series[key] == nil {
		m.series[key] = make(map[string][]timeseries.RawSeries)
	}
	m.series[key][vectorName] = append(m.series[key][vectorName], s)
}

// SetDescriptiveName overrides the descriptive name reported for a vector
func (m *MemoryStore) SetDescriptiveName(vectorName, descriptive string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.descriptive[vectorName] = descriptive
}

// FetchVectorNames lists registered vectors in deterministic order
func (m *MemoryStore) FetchVectorNames(ctx context.Context, caseID, ensembleName string) ([]VectorDescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vectors, ok := m.series[ensembleKey(caseID, ensembleName)]
	if !ok {
		return nil, &UnavailableError{Op: "list vectors", StatusCode: http.StatusNotFound}
	}

	names := make([]string, 0, len(vectors))
	for name := range vectors {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]VectorDescription, len(names))
	for i, name := range names {
		descriptive := m.descriptive[name]
		if descriptive == "" {
			descriptive = name
		}
		out[i] = VectorDescription{Name: name, DescriptiveName: descriptive}
	}
	return out, nil
}

// FetchVectorMetadata returns metadata from the first registered series
func (m *MemoryStore) FetchVectorMetadata(ctx context.Context, caseID, ensembleName, vectorName string) (*timeseries.VectorMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series, ok := m.series[ensembleKey(caseID, ensembleName)][vectorName]
	if !ok || len(series) == 0 {
		return nil, &UnavailableError{Op: "fetch metadata", StatusCode: http.StatusNotFound}
	}
	md := series[0].Metadata
	return &md, nil
}

// FetchVector returns registered series, filtered to the requested
// realizations when given
func (m *MemoryStore) FetchVector(ctx context.Context, caseID, ensembleName, vectorName string, realizations []int) ([]timeseries.RawSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series, ok := m.series[ensembleKey(caseID, ensembleName)][vectorName]
	if !ok {
		return nil, &UnavailableError{Op: "fetch vector " + vectorName, StatusCode: http.StatusNotFound}
	}

	var out []timeseries.RawSeries
	if realizations == nil {
		out = append(out, series...)
	} else {
		wanted := make(map[int]bool, len(realizations))
		for _, r := range realizations {
			wanted[r] = true
		}
		for _, s := range series {
			if wanted[s.Realization] {
				out = append(out, s)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Realization < out[j].Realization })
	return out, nil
}

// FetchRealizationTimestamps returns timestamp sets for the first
// registered vector of each realization
func (m *MemoryStore) FetchRealizationTimestamps(ctx context.Context, caseID, ensembleName string, realizations []int) ([]RealizationTimestamps, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vectors, ok := m.series[ensembleKey(caseID, ensembleName)]
	if !ok {
		return nil, &UnavailableError{Op: "fetch timestamps", StatusCode: http.StatusNotFound}
	}

	wanted := map[int]bool{}
	for _, r := range realizations {
		wanted[r] = true
	}

	byRealization := make(map[int][]timeseries.RawSeries)
	for _, series := range vectors {
		for _, s := range series {
			if realizations != nil && !wanted[s.Realization] {
				continue
			}
			byRealization[s.Realization] = append(byRealization[s.Realization], s)
		}
	}

	ids := make([]int, 0, len(byRealization))
	for id := range byRealization {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]RealizationTimestamps, len(ids))
	for i, id := range ids {
		out[i] = RealizationTimestamps{Realization: id, Timestamps: byRealization[id][0].Timestamps}
	}
	return out, nil
}
