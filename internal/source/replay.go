package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ayusman/vrcpose/internal/landmark"
)

// ReplayOptions configures a Replay.
type ReplayOptions struct {
	// Loop restarts from the first frame at end of file.
	Loop bool
	// Interval is the minimum time between frames. Zero replays as fast as read.
	Interval time.Duration
}

// Replay reads recorded frames from a JSON-lines file.
type Replay struct {
	path string
	opts ReplayOptions

	mu     sync.Mutex
	file   *os.File
	reader *frameReader
	last   time.Time
}

// NewReplay opens path for replay.
func NewReplay(path string, opts ReplayOptions) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	return &Replay{
		path:   path,
		opts:   opts,
		file:   f,
		reader: newFrameReader(f),
	}, nil
}

// Next returns the next recorded frame, waiting out the replay interval first.
func (r *Replay) Next(ctx context.Context) (*landmark.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil, ErrExhausted
	}

	if err := r.pace(ctx); err != nil {
		return nil, err
	}

	f, err := r.reader.next()
	if errors.Is(err, io.EOF) && r.opts.Loop {
		if err := r.rewind(); err != nil {
			return nil, err
		}
		f, err = r.reader.next()
	}
	if errors.Is(err, io.EOF) {
		return nil, ErrExhausted
	}
	if err != nil {
		return nil, err
	}

	r.last = time.Now()
	return f, nil
}

func (r *Replay) pace(ctx context.Context) error {
	if r.opts.Interval <= 0 || r.last.IsZero() {
		return ctx.Err()
	}
	wait := r.opts.Interval - time.Since(r.last)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Replay) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind replay file: %w", err)
	}
	r.reader = newFrameReader(r.file)
	return nil
}

// Close closes the replay file.
func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Path returns the replayed file.
func (r *Replay) Path() string {
	return r.path
}
