package source

import (
	"context"
	"sync"

	"github.com/ayusman/vrcpose/internal/landmark"
)

// Mock is a scripted Source for tests. It returns its frames in order, then
// ErrExhausted.
type Mock struct {
	mu     sync.Mutex
	frames []*landmark.Frame
	errs   map[int]error
	pos    int
	closed bool
}

// NewMock creates a Mock that yields frames.
func NewMock(frames ...*landmark.Frame) *Mock {
	return &Mock{frames: frames, errs: make(map[int]error)}
}

// FailAt makes the i-th call to Next return err instead of a frame.
func (m *Mock) FailAt(i int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[i] = err
}

// Next implements Source.
func (m *Mock) Next(ctx context.Context) (*landmark.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrExhausted
	}

	i := m.pos
	if err, ok := m.errs[i]; ok {
		m.pos++
		delete(m.errs, i)
		return nil, err
	}
	if len(m.frames) == 0 {
		return nil, ErrExhausted
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	m.pos++
	return f, nil
}

// Close implements Source.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
