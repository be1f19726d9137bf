package metrics

import (
	"fmt"
	"math"
	"strings"
)

// ResultOption selects how a class value is obtained from its operations.
type ResultOption int

const (
	// ResultNone uses the class metric's own formula.
	ResultNone ResultOption = iota
	ResultSum
	ResultAverage
	ResultHighest
)

func (r ResultOption) String() string {
	switch r {
	case ResultNone:
		return "native"
	case ResultSum:
		return "sum"
	case ResultAverage:
		return "average"
	case ResultHighest:
		return "highest"
	default:
		return "unknown"
	}
}

func ParseResultOption(s string) (ResultOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "none":
		return ResultNone, nil
	case "sum":
		return ResultSum, nil
	case "average", "avg":
		return ResultAverage, nil
	case "highest", "max":
		return ResultHighest, nil
	default:
		return ResultNone, fmt.Errorf("%w: %q", ErrUnknownResultOption, s)
	}
}

// NotSupported is the value produced for nodes a metric does not measure.
var NotSupported = math.NaN()

func IsSupported(v float64) bool {
	return !math.IsNaN(v)
}

// Exceeds reports v > limit. NaN never exceeds anything.
func Exceeds(v, limit float64) bool {
	return IsSupported(v) && v > limit
}

// AtLeast reports v >= limit. NaN is never at least anything.
func AtLeast(v, limit float64) bool {
	return IsSupported(v) && v >= limit
}

func reduce(values []float64, ro ResultOption) float64 {
	if len(values) == 0 {
		return 0
	}
	switch ro {
	case ResultSum, ResultAverage:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		if ro == ResultAverage {
			return sum / float64(len(values))
		}
		return sum
	case ResultHighest:
		highest := values[0]
		for _, v := range values[1:] {
			if v > highest {
				highest = v
			}
		}
		return highest
	default:
		return NotSupported
	}
}
