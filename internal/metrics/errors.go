package metrics

import "errors"

var (
	// ErrUnknownResultOption indicates a result option name that cannot be parsed
	ErrUnknownResultOption = errors.New("unknown result option")

	// ErrUnknownMetric indicates a metric name that is not part of a key set
	ErrUnknownMetric = errors.New("unknown metric")
)
