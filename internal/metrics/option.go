package metrics

import (
	"sort"
	"strings"
)

// Option is a tag selecting a variant of a metric computation.
type Option string

const optionSeparator = '|'

// Options is an immutable set of options. Two sets holding the same tags are
// equal under ==, regardless of construction order or duplicates.
type Options struct {
	// canonical holds the sorted tags joined by optionSeparator. Backslashes
	// and separators inside a tag are escaped with a backslash.
	canonical string
}

// EmptyOptions is the set used by standard computations.
func EmptyOptions() Options {
	return Options{}
}

func NewOptions(opts ...Option) Options {
	if len(opts) == 0 {
		return Options{}
	}
	seen := make(map[Option]bool, len(opts))
	tags := make([]string, 0, len(opts))
	for _, o := range opts {
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		tags = append(tags, string(o))
	}
	sort.Strings(tags)
	var sb strings.Builder
	for i, tag := range tags {
		if i > 0 {
			sb.WriteByte(optionSeparator)
		}
		for j := 0; j < len(tag); j++ {
			if tag[j] == '\\' || tag[j] == optionSeparator {
				sb.WriteByte('\\')
			}
			sb.WriteByte(tag[j])
		}
	}
	return Options{canonical: sb.String()}
}

func (o Options) IsEmpty() bool {
	return o.canonical == ""
}

func (o Options) List() []Option {
	if o.canonical == "" {
		return nil
	}
	var out []Option
	var cur []byte
	for i := 0; i < len(o.canonical); i++ {
		switch c := o.canonical[i]; {
		case c == '\\' && i+1 < len(o.canonical):
			i++
			cur = append(cur, o.canonical[i])
		case c == optionSeparator:
			out = append(out, Option(cur))
			cur = cur[:0]
		default:
			cur = append(cur, c)
		}
	}
	return append(out, Option(cur))
}

func (o Options) Contains(opt Option) bool {
	for _, have := range o.List() {
		if have == opt {
			return true
		}
	}
	return false
}

// Len is the number of distinct options.
func (o Options) Len() int {
	return len(o.List())
}

func (o Options) String() string {
	tags := o.List()
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = string(tag)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ParameterizedKey identifies one cached value of a node: a metric key plus
// the options it was computed with.
type ParameterizedKey struct {
	Key     *Key
	Options Options
}

func (pk ParameterizedKey) String() string {
	if pk.Key == nil {
		return "<nil>" + pk.Options.String()
	}
	return pk.Key.Name() + pk.Options.String()
}
