package executor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stanbies/cerebro-launcher/internal/logging"
	"github.com/stanbies/cerebro-launcher/internal/metrics"
)

// CacheBustVar is the build argument that invalidates the dependency layer
const CacheBustVar = "CACHE_BUST"

// ComposeExecutor builds, starts and stops the companion compose project
type ComposeExecutor struct {
	runner     composeRunner
	dataDirEnv string
	dataDir    string
	now        Clock
	logger     *logging.Logger
}

// NewComposeExecutor creates a new compose executor. dataDirEnv names the
// variable through which the data directory is handed to the compose file.
func NewComposeExecutor(runner composeRunner, dataDirEnv, dataDir string, now Clock, logger *logging.Logger) *ComposeExecutor {
	if now == nil {
		now = time.Now
	}
	return &ComposeExecutor{
		runner:     runner,
		dataDirEnv: dataDirEnv,
		dataDir:    dataDir,
		now:        now,
		logger:     logger.WithComponent("compose-executor"),
	}
}

// Env returns the variables passed to compose for one launch. CACHE_BUST
// changes every second so the service's own package is always reinstalled.
func (e *ComposeExecutor) Env() []string {
	env := []string{CacheBustVar + "=" + strconv.FormatInt(e.now().Unix(), 10)}
	if e.dataDirEnv != "" && e.dataDir != "" {
		env = append(env, e.dataDirEnv+"="+e.dataDir)
	}
	return env
}

// Launch rebuilds the image with a fresh cache-bust value and starts it detached
func (e *ComposeExecutor) Launch(ctx context.Context) error {
	env := e.Env()

	e.logger.Info().Strs("env", env).Msg("Building and starting service")

	start := time.Now()
	if err := e.runner.UpBuild(ctx, env); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	elapsed := time.Since(start)
	metrics.LaunchDuration.Observe(elapsed.Seconds())

	e.logger.Info().Dur("duration", elapsed).Msg("Service started")
	return nil
}

// Teardown stops and removes the service containers
func (e *ComposeExecutor) Teardown(ctx context.Context) error {
	e.logger.Info().Msg("Stopping service")

	if err := e.runner.Down(ctx); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}

	e.logger.Info().Msg("Service stopped")
	return nil
}

// LogsHint is the compose command that shows build and start output
func (e *ComposeExecutor) LogsHint() string {
	return e.runner.Hint("logs")
}

// DownHint is the compose command that stops the service by hand
func (e *ComposeExecutor) DownHint() string {
	return e.runner.Hint("down")
}
