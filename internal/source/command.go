package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/ayusman/vrcpose/internal/landmark"
)

// Command runs an external landmark detector and reads JSON-lines frames from
// its stdout. The process is started lazily on the first Next and is not
// restarted once it exits.
type Command struct {
	name string
	args []string

	mu      sync.Mutex
	cmd     *exec.Cmd
	reader  *frameReader
	started bool
	done    bool
}

// NewCommand creates a Command source for name with args.
func NewCommand(name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, errors.New("detector command is empty")
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("detector command %q: %w", name, err)
	}
	return &Command{name: name, args: args}, nil
}

// Next returns the next frame printed by the process.
func (c *Command) Next(ctx context.Context) (*landmark.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return nil, ErrExhausted
	}
	if err := c.ensureStarted(ctx); err != nil {
		return nil, err
	}

	f, err := c.reader.next()
	if errors.Is(err, io.EOF) {
		c.done = true
		if werr := c.cmd.Wait(); werr != nil {
			return nil, fmt.Errorf("%w: detector exited: %v", ErrExhausted, werr)
		}
		return nil, ErrExhausted
	}
	return f, err
}

func (c *Command) ensureStarted(ctx context.Context) error {
	if c.started {
		return nil
	}

	c.cmd = exec.CommandContext(ctx, c.name, c.args...)

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Pass detector diagnostics through
	c.cmd.Stderr = os.Stderr

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("start detector: %w", err)
	}

	c.reader = newFrameReader(stdout)
	c.started = true
	return nil
}

// Close stops the process if it is still running.
func (c *Command) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.done {
		return nil
	}
	c.done = true

	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	// Wait reports the kill; that is the expected outcome here
	_ = c.cmd.Wait()
	return nil
}
