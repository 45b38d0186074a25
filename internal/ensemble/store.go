// Package ensemble is the boundary to the upstream series store that holds
// per-realization summary vectors. The core engine treats this package as a
// black box returning raw data; transport, caching and retries live here.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// ErrDataUnavailable is the single error kind the core sees when the store
// fails or the requested case/ensemble/vector does not exist.
var ErrDataUnavailable = errors.New("series data unavailable")

// UnavailableError carries the upstream cause so the HTTP layer can report
// not-found versus upstream-error. It unwraps to ErrDataUnavailable.
type UnavailableError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.StatusCode)
}

func (e *UnavailableError) Unwrap() error { return ErrDataUnavailable }

// NotFound reports whether the upstream answered 404 (as opposed to failing).
func (e *UnavailableError) NotFound() bool { return e.StatusCode == 404 }

// VectorDescription describes one available vector in an ensemble.
type VectorDescription struct {
	Name            string `json:"name"`
	DescriptiveName string `json:"descriptive_name"`
	HasHistorical   bool   `json:"has_historical"`
}

// RealizationTimestamps is one realization's raw timestamp set, used when
// only the timestamps and not the values are needed.
type RealizationTimestamps struct {
	Realization int         `json:"realization"`
	Timestamps  []time.Time `json:"timestamps"`
}

// Store supplies raw per-realization series and metadata for named vectors.
// Implementations own authentication, transport and retry policy. A nil
// realizations slice means all realizations.
type Store interface {
	// FetchVectorNames lists the vectors available in an ensemble.
	FetchVectorNames(ctx context.Context, caseID, ensembleName string) ([]VectorDescription, error)

	// FetchVectorMetadata returns unit and rate/cumulative classification
	// for a named vector.
	FetchVectorMetadata(ctx context.Context, caseID, ensembleName, vectorName string) (*timeseries.VectorMetadata, error)

	// FetchVector returns one RawSeries per requested realization, ordered
	// by realization id.
	FetchVector(ctx context.Context, caseID, ensembleName, vectorName string, realizations []int) ([]timeseries.RawSeries, error)

	// FetchRealizationTimestamps returns each realization's raw timestamp
	// set without values.
	FetchRealizationTimestamps(ctx context.Context, caseID, ensembleName string, realizations []int) ([]RealizationTimestamps, error)
}
