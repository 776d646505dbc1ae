// Package app runs the tracking loop: frames in from a source or the network, avatar parameters out over OSC.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/vrcpose/internal/landmark"
	"github.com/ayusman/vrcpose/internal/osc"
	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
	"github.com/ayusman/vrcpose/internal/source"
	"github.com/ayusman/vrcpose/internal/timeutil"
	"github.com/ayusman/vrcpose/internal/tracker"
)

// DefaultTargetFPS is the processing rate when none is configured.
const DefaultTargetFPS = 30

// Config holds configuration options for the application.
type Config struct {
	TargetFPS int
	Clock     timeutil.Clock
}

// Stats is a snapshot of the running application.
type Stats struct {
	tracker.Stats
	Enabled bool          `json:"enabled"`
	Running bool          `json:"running"`
	Dropped uint64        `json:"dropped"`
	Uptime  time.Duration `json:"uptime"`
}

// FrameListener receives the values sent for each processed frame.
type FrameListener func(values []region.Value)

// App drives a Tracker from a single-slot frame mailbox at a fixed rate.
type App struct {
	config  Config
	tracker *tracker.Tracker
	emitter osc.Emitter
	slot    *Slot

	mu        sync.RWMutex
	source    source.Source
	enabled   bool
	listeners []FrameListener
	cancel    context.CancelFunc
	startedAt time.Time
	wg        sync.WaitGroup

	dropped atomic.Uint64
}

// New creates an App. Tracking starts enabled.
func New(config Config, t *tracker.Tracker, emitter osc.Emitter) *App {
	if config.TargetFPS <= 0 {
		config.TargetFPS = DefaultTargetFPS
	}
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}

	return &App{
		config:  config,
		tracker: t,
		emitter: emitter,
		slot:    NewSlot(),
		enabled: true,
	}
}

// SetSource sets the frame producer started by Start. Without one, frames only
// arrive through Submit.
func (a *App) SetSource(src source.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = src
}

// Submit hands a frame to the pipeline. A frame not yet processed is replaced.
func (a *App) Submit(f *landmark.Frame) {
	if a.slot.Put(f) {
		a.dropped.Add(1)
	}
}

// OnFrame registers a listener called after every processed frame.
func (a *App) OnFrame(fn FrameListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// SetEnabled enables or disables tracking. Changes are announced to the avatar
// through the TrackingEnabled parameter.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed {
		a.announce(enabled)
	}
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Tracker returns the tracker driven by the app.
func (a *App) Tracker() *tracker.Tracker {
	return a.tracker
}

func (a *App) announce(enabled bool) {
	spec := param.MustLookup(param.TrackingEnabled)
	v := 0.0
	if enabled {
		v = 1
	}
	if err := a.emitter.Emit(spec.Name.Address(), spec.Arg(v)); err != nil {
		log.Printf("Failed to send OSC message to %s: %v", spec.Name.Address(), err)
	}
}

// Start begins the pipeline and, if set, the frame source.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.startedAt = a.config.Clock.Now()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.runPipeline(ctx)
	}()

	if a.source != nil {
		src := a.source
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.runSource(ctx, src)
		}()
	}

	a.announce(a.enabled)

	log.Printf("Tracking pipeline started at %d fps", a.config.TargetFPS)
	return nil
}

// Stop halts the pipeline, waits for it to finish its current frame and releases
// the source and emitter.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	src := a.source
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()

	if src != nil {
		if err := src.Close(); err != nil {
			log.Printf("Error closing frame source: %v", err)
		}
	}
	if err := a.emitter.Close(); err != nil && !errors.Is(err, osc.ErrClosed) {
		log.Printf("Error closing OSC emitter: %v", err)
	}

	log.Println("Tracking pipeline stopped")
}

// Running reports whether Start has been called without a matching Stop.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

// Stats returns a snapshot of the app and tracker counters.
func (a *App) Stats() Stats {
	a.mu.RLock()
	running := a.cancel != nil
	startedAt := a.startedAt
	enabled := a.enabled
	a.mu.RUnlock()

	s := Stats{
		Stats:   a.tracker.Stats(),
		Enabled: enabled,
		Running: running,
		Dropped: a.dropped.Load(),
	}
	if running {
		s.Uptime = a.config.Clock.Since(startedAt)
	}
	return s
}
