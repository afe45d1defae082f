package docker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stanbies/cerebro-launcher/internal/runner"
)

// ErrEngineUnavailable is returned when the engine daemon cannot be reached
var ErrEngineUnavailable = errors.New("container engine is not active")

// Engine is the subset of the container engine the launcher depends on
type Engine interface {
	// Info succeeds only when the daemon is reachable
	Info(ctx context.Context) error

	// RunningContainers returns IDs of running containers whose name matches
	RunningContainers(ctx context.Context, name string) ([]string, error)

	// Logs returns the most recent log lines of a container
	Logs(ctx context.Context, name string, tail int) (string, error)
}

// CLIEngine drives the engine through its command line (docker info, docker ps)
type CLIEngine struct {
	binary string
	run    runner.Runner
}

var _ Engine = (*CLIEngine)(nil)

// NewCLIEngine creates an engine backed by the given binary (usually "docker")
func NewCLIEngine(binary string, r runner.Runner) *CLIEngine {
	if binary == "" {
		binary = "docker"
	}
	return &CLIEngine{binary: binary, run: r}
}

// Info runs `docker info`
func (e *CLIEngine) Info(ctx context.Context) error {
	if _, err := e.run.Run(ctx, runner.Command{Name: e.binary, Args: []string{"info"}}); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return nil
}

// RunningContainers runs `docker ps -q -f name=<name>`
func (e *CLIEngine) RunningContainers(ctx context.Context, name string) ([]string, error) {
	out, err := e.run.Run(ctx, runner.Command{
		Name: e.binary,
		Args: []string{"ps", "-q", "-f", "name=" + name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return splitIDs(out), nil
}

// Logs runs `docker logs --tail N <name>`
func (e *CLIEngine) Logs(ctx context.Context, name string, tail int) (string, error) {
	args := []string{"logs"}
	if tail > 0 {
		args = append(args, "--tail", strconv.Itoa(tail))
	}
	args = append(args, name)

	out, err := e.run.Run(ctx, runner.Command{Name: e.binary, Args: args, MergeStderr: true})
	if err != nil {
		return out, fmt.Errorf("failed to get logs for %s: %w", name, err)
	}
	return out, nil
}

// LogsHint is the command a user can run to inspect a crashed service
func LogsHint(binary, name string) string {
	if binary == "" {
		binary = "docker"
	}
	return binary + " logs " + name
}

func splitIDs(out string) []string {
	var ids []string
	for _, line := range strings.Split(out, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
