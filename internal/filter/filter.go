// Package filter provides the scalar channel filter and the landmark detection gate.
package filter

// Params configures one channel's filter.
type Params struct {
	Scale  float64 // multiplier applied to the raw measurement
	Smooth float64 // weight of the previous value, in [0, 1)
	Low    float64
	High   float64
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Apply scales raw, clamps it to [Low, High] and blends it with previous.
// The returned value is also the channel's next previous value.
//
// The blend is not clamped again: it is a convex combination of two in-range
// values, so it cannot leave [Low, High] as long as previous came from Apply.
func Apply(raw, previous float64, p Params) float64 {
	v := Clamp(raw*p.Scale, p.Low, p.High)
	return v*(1-p.Smooth) + previous*p.Smooth
}
