package executor

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// ============================================================================
// Runner Interface
// ============================================================================

// Runner invokes the display-configuration tool with the given arguments and
// returns its combined stdout and stderr
type Runner interface {
	Run(args ...string) (string, error)
}

// CommandError is returned when the tool cannot be started or exits non-zero
type CommandError struct {
	Command []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("error running xrandr command %q: %v: %s",
		strings.Join(e.Command, " "), e.Err, strings.TrimSpace(e.Output))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ============================================================================
// Binary Resolution
// ============================================================================

// ResolveBinary finds the tool in PATH unless name is already a path
func ResolveBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", name, err)
	}
	return path, nil
}

// ============================================================================
// Command Runner
// ============================================================================

// CommandRunner runs a fixed binary through os/exec
type CommandRunner struct {
	binary string
	logger *log.Logger
}

// NewRunner creates a runner for the given binary
func NewRunner(binary string) *CommandRunner {
	return &CommandRunner{
		binary: binary,
		logger: log.Default(),
	}
}

// WithLogger sets the logger used for invocation tracing
func (r *CommandRunner) WithLogger(l *log.Logger) *CommandRunner {
	r.logger = l
	return r
}

// Binary returns the configured binary
func (r *CommandRunner) Binary() string {
	return r.binary
}

// Run executes the binary with an empty stdin and waits for it to exit.
// stdout and stderr share one buffer so failures keep their context.
func (r *CommandRunner) Run(args ...string) (string, error) {
	command := append([]string{r.binary}, args...)
	r.logger.Debug("running xrandr", "cmd", strings.Join(command, " "))

	cmd := exec.Command(r.binary, args...)
	cmd.Stdin = strings.NewReader("")

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Command: command,
			Output:  combined.String(),
			Err:     err,
		}
	}

	r.logger.Debug("xrandr finished", "bytes", combined.Len())
	return combined.String(), nil
}
