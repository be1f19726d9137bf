// Package property defines the typed, bounded configuration values rules
// read from their properties map.
package property

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"codemetrics/internal/metrics"
)

// Descriptor is implemented by every property type.
type Descriptor interface {
	Name() string
	Description() string
	DefaultString() string
}

// IntProperty is an integer bounded to [Min, Max]
type IntProperty struct {
	name, description string
	Min, Max, Default int
}

func NewIntProperty(name, description string, min, max, def int) IntProperty {
	return IntProperty{name: name, description: description, Min: min, Max: max, Default: def}
}

func (p IntProperty) Name() string          { return p.name }
func (p IntProperty) Description() string   { return p.description }
func (p IntProperty) DefaultString() string { return strconv.Itoa(p.Default) }

func (p IntProperty) Parse(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, p.name, s, err)
	}
	if v < p.Min || v > p.Max {
		return 0, fmt.Errorf("%w: %s=%d not in [%d, %d]", ErrOutOfRange, p.name, v, p.Min, p.Max)
	}
	return v, nil
}

// From reads the property from props, falling back to the default when the
// entry is absent.
func (p IntProperty) From(props map[string]string) (int, error) {
	s, ok := props[p.name]
	if !ok {
		return p.Default, nil
	}
	return p.Parse(s)
}

// DoubleProperty is a float bounded to [Min, Max]
type DoubleProperty struct {
	name, description string
	Min, Max, Default float64
}

func NewDoubleProperty(name, description string, min, max, def float64) DoubleProperty {
	return DoubleProperty{name: name, description: description, Min: min, Max: max, Default: def}
}

func (p DoubleProperty) Name() string        { return p.name }
func (p DoubleProperty) Description() string { return p.description }
func (p DoubleProperty) DefaultString() string {
	return strconv.FormatFloat(p.Default, 'g', -1, 64)
}

func (p DoubleProperty) Parse(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, p.name, s, err)
	}
	if v < p.Min || v > p.Max {
		return 0, fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, p.name, v, p.Min, p.Max)
	}
	return v, nil
}

func (p DoubleProperty) From(props map[string]string) (float64, error) {
	s, ok := props[p.name]
	if !ok {
		return p.Default, nil
	}
	return p.Parse(s)
}

type BoolProperty struct {
	name, description string
	Default           bool
}

func NewBoolProperty(name, description string, def bool) BoolProperty {
	return BoolProperty{name: name, description: description, Default: def}
}

func (p BoolProperty) Name() string          { return p.name }
func (p BoolProperty) Description() string   { return p.description }
func (p BoolProperty) DefaultString() string { return strconv.FormatBool(p.Default) }

func (p BoolProperty) Parse(s string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidValue, p.name, s)
	}
	return v, nil
}

func (p BoolProperty) From(props map[string]string) (bool, error) {
	s, ok := props[p.name]
	if !ok {
		return p.Default, nil
	}
	return p.Parse(s)
}

// OptionsProperty maps comma separated labels to metric options.
type OptionsProperty struct {
	name, description string
	labels            map[string]metrics.Option
	Default           []metrics.Option
}

func NewOptionsProperty(name, description string, labels map[string]metrics.Option, def ...metrics.Option) OptionsProperty {
	return OptionsProperty{name: name, description: description, labels: labels, Default: def}
}

func (p OptionsProperty) Name() string        { return p.name }
func (p OptionsProperty) Description() string { return p.description }

func (p OptionsProperty) DefaultString() string {
	var labels []string
	for label, opt := range p.labels {
		for _, d := range p.Default {
			if d == opt {
				labels = append(labels, label)
			}
		}
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}

// Labels returns the accepted labels, sorted.
func (p OptionsProperty) Labels() []string {
	out := make([]string, 0, len(p.labels))
	for label := range p.labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func (p OptionsProperty) Parse(s string) ([]metrics.Option, error) {
	var out []metrics.Option
	for _, label := range strings.Split(s, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		opt, ok := p.labels[label]
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q, expected one of %s", ErrInvalidValue, p.name, label, strings.Join(p.Labels(), ", "))
		}
		out = append(out, opt)
	}
	return out, nil
}

func (p OptionsProperty) From(props map[string]string) ([]metrics.Option, error) {
	s, ok := props[p.name]
	if !ok {
		return p.Default, nil
	}
	return p.Parse(s)
}
