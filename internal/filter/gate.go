package filter

import "github.com/ayusman/vrcpose/internal/landmark"

// Gate decides from landmark confidences whether a body region is present.
type Gate struct {
	Threshold float64
}

// NewGate creates a Gate. A threshold of 0 lets everything through except
// landmarks reported with zero or negative visibility.
func NewGate(threshold float64) Gate {
	return Gate{Threshold: threshold}
}

// Pass reports whether every landmark's visibility is strictly above the threshold.
// No landmarks means nothing was detected.
func (g Gate) Pass(points ...landmark.Landmark) bool {
	if len(points) == 0 {
		return false
	}
	for _, p := range points {
		if !(p.Visibility > g.Threshold) {
			return false
		}
	}
	return true
}
