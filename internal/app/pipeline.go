package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ayusman/vrcpose/internal/source"
)

// runPipeline processes at most one frame per tick until ctx is done.
//
// Pipeline logic:
// 1. Wait for the next tick of the target frame rate
// 2. Skip the tick if tracking is disabled
// 3. Take the latest submitted frame, if any
// 4. Run it through the tracker (all regions, all channels)
// 5. Hand the sent values to listeners
func (a *App) runPipeline(ctx context.Context) {
	frameInterval := time.Second / time.Duration(a.config.TargetFPS)

	ticker := a.config.Clock.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			a.Tick()
		}
	}
}

// Tick runs one pipeline step and reports whether a frame was processed.
// Tests call it directly instead of waiting for the ticker.
func (a *App) Tick() bool {
	if !a.IsEnabled() {
		return false
	}

	frame, ok := a.slot.Take()
	if !ok {
		return false
	}

	values := a.tracker.Process(frame)

	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(values)
	}
	return true
}

// runSource moves frames from src into the slot until the source ends or ctx is done.
func (a *App) runSource(ctx context.Context, src source.Source) {
	for {
		frame, err := src.Next(ctx)
		switch {
		case err == nil:
			a.Submit(frame)
		case errors.Is(err, source.ErrMalformed):
			log.Printf("Skipping frame: %v", err)
		case errors.Is(err, source.ErrExhausted):
			log.Printf("Frame source finished: %v", err)
			return
		case ctx.Err() != nil:
			return
		default:
			log.Printf("Error reading frame: %v", err)
			return
		}
	}
}
