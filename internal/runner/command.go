package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

// Command describes one synchronous external tool invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one
	Dir string
	// Env is appended to the parent environment
	Env []string
	// MergeStderr folds stderr into the returned output
	MergeStderr bool
}

// String renders the command line for logs and diagnostics
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes commands to completion and returns their stdout
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger *logging.Logger
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner(logger *logging.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.WithComponent("runner")}
}

// Run executes the command; a non-zero exit is returned as an error that
// carries the captured stderr.
func (r *ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	r.logger.Debug().Str("cmd", c.String()).Str("dir", c.Dir).Msg("Running command")

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	// Never let git or docker stop to ask for credentials.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Env = append(cmd.Env, c.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.MergeStderr {
		cmd.Stderr = &stdout
	}

	if err := cmd.Run(); err != nil {
		r.logger.Debug().
			Str("cmd", c.String()).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Err(err).
			Msg("Command failed")
		return stdout.String(), &Error{Command: c, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}

	return stdout.String(), nil
}

// Error is returned when a command could not start or exited non-zero
type Error struct {
	Command Command
	Err     error
	Stderr  string
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
}

func (e *Error) Unwrap() error {
	return e.Err
}
