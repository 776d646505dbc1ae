// Package tracker runs the per-frame landmark to avatar parameter pass.
package tracker

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/vrcpose/internal/filter"
	"github.com/ayusman/vrcpose/internal/landmark"
	"github.com/ayusman/vrcpose/internal/osc"
	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
	"github.com/ayusman/vrcpose/internal/throttle"
	"github.com/ayusman/vrcpose/internal/timeutil"
)

// Logf writes diagnostic lines. Tests replace it to capture output.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. Passing nil mutes the tracker.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Config holds the tuning of a Tracker.
type Config struct {
	DetectionThreshold   float64
	Tuning               region.Tuning
	LogInterval          time.Duration
	ValueChangeThreshold float64
	Classifier           region.GestureClassifier
	Clock                timeutil.Clock
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		DetectionThreshold:   0.0,
		Tuning:               region.DefaultTuning(),
		LogInterval:          throttle.DefaultInterval,
		ValueChangeThreshold: throttle.DefaultValueThreshold,
		Classifier:           region.NeutralClassifier{},
		Clock:                timeutil.RealClock{},
	}
}

// Stats counts the work done by a Tracker.
type Stats struct {
	Frames uint64 `json:"frames"`
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

// Tracker owns the filter state of every channel and turns frames into sends.
// Process must not be called concurrently.
type Tracker struct {
	emitter osc.Emitter
	clock   timeutil.Clock
	pose    []*region.Region
	hands   map[landmark.Side]*region.Region

	mu       sync.RWMutex
	gate     filter.Gate
	tuning   region.Tuning
	throttle *throttle.Throttle
	state    map[param.Name]float64

	frames atomic.Uint64
	sent   atomic.Uint64
	failed atomic.Uint64
}

// New creates a Tracker that sends through emitter.
func New(emitter osc.Emitter, cfg Config) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}

	t := &Tracker{
		emitter:  emitter,
		clock:    cfg.Clock,
		throttle: throttle.New(cfg.LogInterval, cfg.ValueChangeThreshold),
		pose:     region.PoseRegions(),
		hands:    region.HandRegions(cfg.Classifier),
		gate:     filter.NewGate(cfg.DetectionThreshold),
		tuning:   cfg.Tuning,
		state:    make(map[param.Name]float64),
	}

	for _, r := range t.pose {
		for _, name := range r.Channels() {
			t.state[name] = param.MustLookup(name).Default
		}
	}
	return t
}

// Process runs one frame through every region and sends each derived value.
// A failed send is logged and the remaining values are still sent. The values
// are returned in send order.
func (t *Tracker) Process(frame *landmark.Frame) []region.Value {
	t.mu.Lock()
	gate, tuning, th := t.gate, t.tuning, t.throttle

	var body []landmark.Landmark
	if frame != nil && frame.Body != nil {
		body = frame.Body.Points[:]
	}

	var values []region.Value
	for _, r := range t.pose {
		values = append(values, r.Derive(body, gate, tuning, t.state)...)
	}
	if frame != nil {
		for i := range frame.Hands {
			hand := &frame.Hands[i]
			r := t.hands[landmark.ResolveSide(hand)]
			values = append(values, r.Derive(hand.Points[:], gate, tuning, t.state)...)
		}
	}
	t.mu.Unlock()

	now := t.clock.Now()
	for _, v := range values {
		t.send(th, v, now)
	}

	t.frames.Add(1)
	return values
}

func (t *Tracker) send(th *throttle.Throttle, v region.Value, now time.Time) {
	spec := param.MustLookup(v.Name)
	address := v.Name.Address()
	arg := spec.Arg(v.Value)

	if th.ShouldLog(v.Name, v.Value, now) {
		Logf("Sending OSC: %s = %v", address, arg)
	}

	if err := t.emitter.Emit(address, arg); err != nil {
		t.failed.Add(1)
		Logf("Failed to send OSC message to %s: %v", address, err)
		return
	}
	t.sent.Add(1)
}

// State returns the last smoothed value of a channel.
func (t *Tracker) State(name param.Name) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.state[name]
	return v, ok
}

// Retune replaces the gate threshold and filter tuning. Filter state is kept.
func (t *Tracker) Retune(threshold float64, tuning region.Tuning) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gate = filter.NewGate(threshold)
	t.tuning = tuning
}

// SetDiagnostics replaces the log throttle. Logging history starts over.
func (t *Tracker) SetDiagnostics(interval time.Duration, changeThreshold float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.throttle = throttle.New(interval, changeThreshold)
}

// Tuning returns the current gate threshold and filter tuning.
func (t *Tracker) Tuning() (float64, region.Tuning) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gate.Threshold, t.tuning
}

// Stats returns the counters accumulated so far.
func (t *Tracker) Stats() Stats {
	return Stats{
		Frames: t.frames.Load(),
		Sent:   t.sent.Load(),
		Failed: t.failed.Load(),
	}
}
