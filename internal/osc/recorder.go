package osc

import (
	"sync"
)

// Message is one Emit call captured by a Recorder.
type Message struct {
	Address string
	Value   any
}

// Recorder is an in-memory Emitter for tests. Successful sends are kept in order;
// sends to addresses registered with FailAddress return the registered error.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	attempts int
	failures map[string]error
	closed   bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{failures: make(map[string]error)}
}

// FailAddress makes every Emit to address return err.
func (r *Recorder) FailAddress(address string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[address] = err
}

// Emit implements Emitter.
func (r *Recorder) Emit(address string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.attempts++
	if err, ok := r.failures[address]; ok {
		return err
	}
	r.messages = append(r.messages, Message{Address: address, Value: value})
	return nil
}

// Close implements Emitter.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Messages returns a copy of the successfully sent messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Attempts returns the number of Emit calls, failed ones included.
func (r *Recorder) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// Reset discards recorded messages and attempts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.attempts = 0
}
