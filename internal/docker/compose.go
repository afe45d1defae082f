package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/stanbies/cerebro-launcher/internal/runner"
)

// ComposeOptions selects the compose project a runner operates on
type ComposeOptions struct {
	// Binary is "docker" (v2 plugin) or "docker-compose" (legacy)
	Binary      string
	File        string
	ProjectName string
	// Dir is the project directory commands run in
	Dir string
}

// ComposeRunner executes docker compose commands
type ComposeRunner struct {
	opts ComposeOptions
	run  runner.Runner
}

// NewComposeRunner creates a new compose runner
func NewComposeRunner(opts ComposeOptions, r runner.Runner) *ComposeRunner {
	if opts.Binary == "" {
		opts.Binary = "docker"
	}
	return &ComposeRunner{opts: opts, run: r}
}

// buildCommand builds a docker compose command
func (r *ComposeRunner) buildCommand(env []string, args ...string) runner.Command {
	var cmdArgs []string

	if r.opts.Binary != "docker-compose" {
		// Docker v2 plugin style: docker compose
		cmdArgs = append(cmdArgs, "compose")
	}
	if r.opts.File != "" {
		cmdArgs = append(cmdArgs, "-f", r.opts.File)
	}
	if r.opts.ProjectName != "" {
		cmdArgs = append(cmdArgs, "-p", r.opts.ProjectName)
	}
	cmdArgs = append(cmdArgs, args...)

	return runner.Command{
		Name: r.opts.Binary,
		Args: cmdArgs,
		Dir:  r.opts.Dir,
		Env:  env,
	}
}

// UpBuild rebuilds and starts services detached. env is passed to the
// compose process so build args such as CACHE_BUST can be interpolated.
func (r *ComposeRunner) UpBuild(ctx context.Context, env []string) error {
	cmd := r.buildCommand(env, "up", "-d", "--build")
	if _, err := r.run.Run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to up: %w", err)
	}
	return nil
}

// Down stops and removes the project's containers
func (r *ComposeRunner) Down(ctx context.Context) error {
	if _, err := r.run.Run(ctx, r.buildCommand(nil, "down")); err != nil {
		return fmt.Errorf("failed to down: %w", err)
	}
	return nil
}

// Hint renders a compose subcommand the user can run by hand
func (r *ComposeRunner) Hint(args ...string) string {
	cmd := r.buildCommand(nil, args...)
	return strings.TrimSpace(cmd.String())
}
