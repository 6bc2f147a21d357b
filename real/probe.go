package real

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner implements CommandRunner with os/exec.
type ExecRunner struct{}

// Run executes name with args and returns its standard output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ParseEncoders extracts the video encoder names from `ffmpeg -encoders` output.
//
// The listing starts after a line of dashes; each entry is a flag column
// whose first character is the media type followed by the encoder name.
func ParseEncoders(output []byte) (map[string]bool, error) {
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	listing := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		if fields[0][0] == 'V' {
			encoders[fields[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !listing {
		return nil, fmt.Errorf("encoder listing not found in ffmpeg output")
	}
	return encoders, nil
}
