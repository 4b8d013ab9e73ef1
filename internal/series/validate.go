package series

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tidemap/enviro-aggregation/internal/params"
)

// Columns is a validated, aligned hourly series from one provider: every
// value slice has exactly len(Times) entries, nil meaning null.
type Columns struct {
	Kind   ProviderKind
	Times  []string
	Values map[params.Key][]*float64
}

// ValidateHourly checks a raw provider payload against the parameters
// requested from it. A missing or empty time axis fails the whole payload
// (nothing can be merged without it). A parameter whose column is missing,
// malformed, or of mismatched length is degraded to all-null with a warning;
// sibling parameters from the same payload are unaffected.
func ValidateHourly(raw *RawHourly, descs []params.Descriptor, trace *Trace) (*Columns, error) {
	if raw == nil || len(raw.Times) == 0 {
		return nil, fmt.Errorf("%s response has no hourly time axis", raw.kindLabel())
	}

	out := &Columns{
		Kind:   raw.Kind,
		Times:  raw.Times,
		Values: make(map[params.Key][]*float64, len(descs)),
	}

	n := len(raw.Times)
	for _, d := range descs {
		col, ok := raw.Columns[d.Upstream]
		if !ok {
			trace.Append(StatusWarning,
				fmt.Sprintf("Parameter %s unavailable from %s", d.Key, raw.Kind),
				fmt.Sprintf("field %q missing or not an array", d.Upstream))
			out.Values[d.Key] = make([]*float64, n)
			continue
		}
		if len(col) != n {
			trace.Append(StatusWarning,
				fmt.Sprintf("Parameter %s unavailable from %s", d.Key, raw.Kind),
				fmt.Sprintf("field %q has %d values for %d timestamps", d.Upstream, len(col), n))
			out.Values[d.Key] = make([]*float64, n)
			continue
		}

		vals := make([]*float64, n)
		for i, v := range col {
			vals[i] = coerceNumber(v)
		}
		out.Values[d.Key] = vals
	}

	return out, nil
}

// coerceNumber applies Number() semantics to a raw decoded JSON value:
// numbers pass through, numeric strings are parsed, and anything else
// (null, NaN, objects, booleans) becomes an explicit null.
func coerceNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		f := n
		return &f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func (r *RawHourly) kindLabel() string {
	if r == nil {
		return "provider"
	}
	return string(r.Kind)
}
