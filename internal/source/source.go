// Package source provides the landmark frame producers that feed the pipeline.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ayusman/vrcpose/internal/landmark"
)

// Sentinel errors returned by Next.
var (
	// ErrExhausted means the source has no more frames.
	ErrExhausted = errors.New("source exhausted")
	// ErrMalformed means one input record could not be decoded. The source stays usable.
	ErrMalformed = errors.New("malformed frame")
)

// maxLineSize bounds a single JSON frame line.
const maxLineSize = 1 << 20

// Source produces landmark frames one at a time.
type Source interface {
	// Next blocks until a frame is available, the source ends, or ctx is done.
	Next(ctx context.Context) (*landmark.Frame, error)
	// Close releases the source.
	Close() error
}

// frameReader decodes JSON-lines frames, skipping blank lines.
type frameReader struct {
	scanner *bufio.Scanner
	line    int
}

func newFrameReader(r io.Reader) *frameReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &frameReader{scanner: s}
}

// next returns io.EOF at the end of input.
func (r *frameReader) next() (*landmark.Frame, error) {
	for r.scanner.Scan() {
		r.line++
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		f, err := landmark.DecodeFrame(data)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, r.line, err)
		}
		return f, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return nil, io.EOF
}
