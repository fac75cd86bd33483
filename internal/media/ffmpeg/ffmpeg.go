// Package ffmpeg wraps execution of the external ffmpeg binary.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an ffmpeg invocation. The single-method interface exists
// so pipeline tests can substitute a fake without spawning processes.
type Runner interface {
	Run(ctx context.Context, args ...string) error
}

// CommandRunner shells out to a configured ffmpeg binary.
type CommandRunner struct {
	binary string
}

// NewCommandRunner constructs a runner for the given binary, defaulting to
// "ffmpeg" from PATH when empty.
func NewCommandRunner(binary string) CommandRunner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return CommandRunner{binary: binary}
}

// Binary reports the configured executable name.
func (r CommandRunner) Binary() string {
	return r.binary
}

// Run executes ffmpeg with the provided arguments. A non-zero exit surfaces
// the program's diagnostic output in the returned error.
func (r CommandRunner) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
