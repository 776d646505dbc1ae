package region

import (
	"github.com/ayusman/vrcpose/internal/filter"
	"github.com/ayusman/vrcpose/internal/param"
)

// Default filter settings.
const (
	DefaultMovementScale = 2.0
	DefaultSmoothFactor  = 0.5
)

// Override replaces the shared scale or smoothing of a single channel. Nil fields
// keep the shared value.
type Override struct {
	Scale  *float64 `json:"scale,omitempty"`
	Smooth *float64 `json:"smooth,omitempty"`
}

// Tuning holds the filter settings shared by all channels plus per-channel overrides.
type Tuning struct {
	Scale     float64                 `json:"scale"`
	Smooth    float64                 `json:"smooth"`
	Overrides map[param.Name]Override `json:"overrides,omitempty"`
}

// DefaultTuning returns the shared defaults without overrides.
func DefaultTuning() Tuning {
	return Tuning{Scale: DefaultMovementScale, Smooth: DefaultSmoothFactor}
}

// Params resolves the filter parameters of one channel.
func (t Tuning) Params(spec param.Spec) filter.Params {
	p := filter.Params{
		Scale:  t.Scale,
		Smooth: t.Smooth,
		Low:    spec.Min,
		High:   spec.Max,
	}
	if o, ok := t.Overrides[spec.Name]; ok {
		if o.Scale != nil {
			p.Scale = *o.Scale
		}
		if o.Smooth != nil {
			p.Smooth = *o.Smooth
		}
	}
	return p
}
