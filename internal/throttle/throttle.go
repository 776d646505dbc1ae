// Package throttle limits how often per-channel diagnostic lines are written.
package throttle

import (
	"math"
	"sync"
	"time"

	"github.com/ayusman/vrcpose/internal/param"
)

// Defaults for New.
const (
	DefaultInterval       = 500 * time.Millisecond
	DefaultValueThreshold = 0.01
)

type entry struct {
	at    time.Time
	value float64
}

// Throttle decides per channel whether a value is worth logging. It never affects
// whether the value is sent.
type Throttle struct {
	interval  time.Duration
	threshold float64

	mu   sync.Mutex
	last map[param.Name]entry
}

// New creates a Throttle that logs a channel at most once per interval, and only
// when its value moved by more than threshold since the last logged value.
func New(interval time.Duration, threshold float64) *Throttle {
	return &Throttle{
		interval:  interval,
		threshold: threshold,
		last:      make(map[param.Name]entry),
	}
}

// ShouldLog reports whether value should be logged for name at now, and records
// it as the last logged value if so. A channel never logged before always passes.
func (t *Throttle) ShouldLog(name param.Name, value float64, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.last[name]
	if ok {
		if now.Sub(prev.at) < t.interval {
			return false
		}
		if !(math.Abs(value-prev.value) > t.threshold) {
			return false
		}
	}

	t.last[name] = entry{at: now, value: value}
	return true
}

// Reset forgets all logged state.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[param.Name]entry)
}
