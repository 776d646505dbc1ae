// Package region turns landmark geometry into avatar parameter values, one body region at a time.
package region

import (
	"github.com/ayusman/vrcpose/internal/filter"
	"github.com/ayusman/vrcpose/internal/landmark"
	"github.com/ayusman/vrcpose/internal/param"
)

// Measure computes a raw quantity from a landmark set.
type Measure func(pts []landmark.Landmark) float64

// Output binds a channel to the measurement that feeds it.
type Output struct {
	Name    param.Name
	Measure Measure
}

// Value is one derived channel value ready to be sent.
type Value struct {
	Name  param.Name `json:"name"`
	Value float64    `json:"value"`
}

// Region is a gated group of channels computed from one landmark set.
type Region struct {
	Name     string
	Detected param.Name
	Required []int // landmark indices that must pass the gate
	Outputs  []Output
}

// Derive computes the region's values for one frame.
//
// When the gate passes, every output is measured, filtered and recorded in state,
// followed by the detection flag set to 1. When it fails, only the detection flag
// is returned with 0 and state is left as it was. Required indices that are not
// present in pts count as a failure.
func (r *Region) Derive(pts []landmark.Landmark, gate filter.Gate, tuning Tuning, state map[param.Name]float64) []Value {
	if !r.passes(pts, gate) {
		return []Value{{Name: r.Detected, Value: 0}}
	}

	values := make([]Value, 0, len(r.Outputs)+1)
	for _, out := range r.Outputs {
		spec := param.MustLookup(out.Name)
		raw := out.Measure(pts)

		var v float64
		if spec.Smoothed() {
			v = filter.Apply(raw, state[out.Name], tuning.Params(spec))
			state[out.Name] = v
		} else {
			v = filter.Clamp(raw, spec.Min, spec.Max)
		}
		values = append(values, Value{Name: out.Name, Value: v})
	}

	return append(values, Value{Name: r.Detected, Value: 1})
}

// Channels lists the smoothed channels of the region.
func (r *Region) Channels() []param.Name {
	var names []param.Name
	for _, out := range r.Outputs {
		if param.MustLookup(out.Name).Smoothed() {
			names = append(names, out.Name)
		}
	}
	return names
}

func (r *Region) passes(pts []landmark.Landmark, gate filter.Gate) bool {
	if len(r.Required) == 0 {
		return false
	}
	required := make([]landmark.Landmark, 0, len(r.Required))
	for _, idx := range r.Required {
		if idx < 0 || idx >= len(pts) {
			return false
		}
		required = append(required, pts[idx])
	}
	return gate.Pass(required...)
}
