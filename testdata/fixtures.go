package testdata

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ayusman/vrcpose/internal/landmark"
)

//go:embed frames/*
var framesFS embed.FS

// Recording names.
const (
	// Session has five frames: full body with a right hand, left knee raised,
	// left shoulder lost, no body with a left hand, knee raised with both hands.
	Session = "session.jsonl"
	// Malformed has a valid frame, a blank line, a truncated line and another valid frame.
	Malformed = "malformed.jsonl"
)

// LoadRecording returns the raw bytes of a recording.
func LoadRecording(name string) ([]byte, error) {
	data, err := framesFS.ReadFile("frames/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return data, nil
}

// LoadFrames decodes every line of a well-formed recording.
func LoadFrames(name string) ([]*landmark.Frame, error) {
	data, err := LoadRecording(name)
	if err != nil {
		return nil, err
	}

	var frames []*landmark.Frame
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f, err := landmark.DecodeFrame([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, i+1, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// CopyTo writes a recording into dir and returns its path, for code that opens files by name.
func CopyTo(dir, name string) (string, error) {
	data, err := LoadRecording(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write recording %s: %w", name, err)
	}
	return path, nil
}
