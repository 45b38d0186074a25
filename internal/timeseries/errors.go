package timeseries

import "errors"

var (
	// ErrInvalidFrequency is returned when an unrecognized resampling
	// frequency value is supplied.
	ErrInvalidFrequency = errors.New("invalid resampling frequency")

	// ErrExpressionSyntax is returned when a vector expression cannot be parsed.
	ErrExpressionSyntax = errors.New("malformed vector expression")

	// ErrUnknownVector is returned when an expression references a vector
	// that cannot be resolved.
	ErrUnknownVector = errors.New("unknown vector reference")

	// ErrNoComputableStatistics is returned when the aligned grid has no
	// points at all, so no statistic can be computed.
	ErrNoComputableStatistics = errors.New("no computable statistics")
)
