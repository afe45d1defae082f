// Package session sequences one launcher run: prerequisite gate, update
// check, version state, optional update, launch, readiness wait, stop-wait
// and teardown.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/stanbies/cerebro-launcher/internal/browser"
	"github.com/stanbies/cerebro-launcher/internal/console"
	"github.com/stanbies/cerebro-launcher/internal/logging"
	"github.com/stanbies/cerebro-launcher/internal/metrics"
	"github.com/stanbies/cerebro-launcher/internal/probe"
	"github.com/stanbies/cerebro-launcher/internal/release"
	"github.com/stanbies/cerebro-launcher/internal/state"
	"github.com/stanbies/cerebro-launcher/internal/updater"
)

const (
	ExitOK    = 0
	ExitFatal = 1

	// EngineHint is shown when the container engine does not answer
	EngineHint = "start Docker Desktop and run the launcher again"

	defaultTeardownTimeout = 2 * time.Minute
)

// Engine is the prerequisite gate
type Engine interface {
	Info(ctx context.Context) error
}

// UpdateChecker resolves revisions and the release tag
type UpdateChecker interface {
	Check(ctx context.Context) release.Status
}

// UpdateApplier prompts for and applies pending commits
type UpdateApplier interface {
	Apply(ctx context.Context) updater.Result
}

// Launcher starts and stops the service
type Launcher interface {
	Launch(ctx context.Context) error
	Teardown(ctx context.Context) error
	LogsHint() string
	DownHint() string
}

// HealthWaiter blocks until the service is ready
type HealthWaiter interface {
	Wait(ctx context.Context) (probe.Outcome, error)
}

// Console is the interactive terminal
type Console interface {
	WaitLine(ctx context.Context) (string, error)
	Printf(format string, args ...any)
	Println(args ...any)
	Pause(ctx context.Context, message string)
}

// Recorder persists launch history
type Recorder interface {
	SaveSession(ctx context.Context, session *state.Session) error
	SetSetting(ctx context.Context, key, value string) error
}

// Components are the collaborators of a session. Recorder may be nil.
type Components struct {
	Engine   Engine
	Checker  UpdateChecker
	State    updater.StateWriter
	Updater  UpdateApplier
	Launcher Launcher
	Waiter   HealthWaiter
	Browser  browser.Opener
	Console  Console
	Recorder Recorder
}

// Options holds the session settings
type Options struct {
	ServiceURL string
	// CrashHint is the command that shows the service container's logs
	CrashHint       string
	PauseOnExit     bool
	TeardownTimeout time.Duration
	Now             func() time.Time
}

// Controller runs launch sessions
type Controller struct {
	c      Components
	opts   Options
	logger *logging.Logger
}

// NewController creates a session controller
func NewController(components Components, opts Options, logger *logging.Logger) *Controller {
	if components.Browser == nil {
		components.Browser = browser.Disabled{}
	}
	if opts.TeardownTimeout <= 0 {
		opts.TeardownTimeout = defaultTeardownTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		c:      components,
		opts:   opts,
		logger: logger.WithComponent("session"),
	}
}

// Run executes one session and returns the process exit code
func (s *Controller) Run(ctx context.Context) int {
	record := &state.Session{
		StartedAt:     s.opts.Now(),
		UpdateOutcome: string(updater.OutcomeNone),
	}
	record.ID = state.GenerateSessionID(record.StartedAt)
	logger := s.logger.WithSession(record.ID)

	outcome, err := s.run(ctx, record, logger)

	record.Outcome = outcome
	record.FinishedAt = s.opts.Now()
	record.ExitCode = ExitOK
	if err != nil {
		record.ExitCode = ExitFatal
		record.Error = err.Error()
	}
	s.record(ctx, record, logger)
	metrics.SessionsTotal.WithLabelValues(string(outcome)).Inc()

	if err == nil {
		return ExitOK
	}

	var fatal *FatalError
	if errors.As(err, &fatal) {
		logger.Error().Err(fatal.Err).Str("outcome", string(outcome)).Msg(fatal.Cause)
		s.c.Console.Printf("Error: %s\n", fatal.Cause)
		if fatal.Hint != "" {
			s.c.Console.Printf("Hint: %s\n", fatal.Hint)
		}
	}

	if outcome != state.OutcomeInterrupted && s.opts.PauseOnExit && ctx.Err() == nil {
		s.c.Console.Pause(ctx, "Press Enter to exit")
	}
	return ExitFatal
}

func (s *Controller) run(ctx context.Context, record *state.Session, logger *logging.Logger) (state.Outcome, error) {
	s.c.Console.Println("Checking Docker...")
	if err := s.c.Engine.Info(ctx); err != nil {
		return state.OutcomePreconditionFailed, &FatalError{
			Cause: "Docker engine not active",
			Hint:  EngineHint,
			Err:   err,
		}
	}

	s.c.Console.Println("Checking for updates...")
	status := s.c.Checker.Check(ctx)
	record.Version = status.LatestTag
	record.HasNewCommits = status.HasNewCommits

	if err := s.c.State.Write(status.LatestTag, status.HasNewCommits); err != nil {
		logger.Warn().Err(err).Msg("Could not write version state")
	}

	if status.HasNewCommits {
		result := s.c.Updater.Apply(ctx)
		record.UpdateOutcome = string(result.Outcome)
		switch result.Outcome {
		case updater.OutcomeApplied:
			record.Version = result.Tag
			record.HasNewCommits = false
			s.c.Console.Printf("Updated to %s\n", result.Tag)
		case updater.OutcomeFailed:
			s.c.Console.Println("Update failed, starting the current version")
		}
	}

	if ctx.Err() != nil {
		return state.OutcomeInterrupted, errInterrupted
	}

	s.c.Console.Printf("Starting Cerebro Companion %s...\n", record.Version)
	if err := s.c.Launcher.Launch(ctx); err != nil {
		if ctx.Err() != nil {
			return s.interrupted(ctx, logger)
		}
		return state.OutcomeLaunchFailed, &FatalError{
			Cause: "could not build or start the service",
			Hint:  "view logs with: " + s.c.Launcher.LogsHint(),
			Err:   err,
		}
	}

	s.c.Console.Println("Waiting for the service to become ready...")
	ready, err := s.c.Waiter.Wait(ctx)
	record.ReadyTicks = ready.Ticks
	switch {
	case errors.Is(err, probe.ErrInterrupted):
		return s.interrupted(ctx, logger)
	case errors.Is(err, probe.ErrServiceExited):
		return state.OutcomeCrashed, &FatalError{
			Cause: "the service stopped before it became ready",
			Hint:  "view logs with: " + s.opts.CrashHint,
			Err:   err,
		}
	case err != nil:
		return state.OutcomeLaunchFailed, &FatalError{Cause: "health check failed", Err: err}
	}

	if err := s.c.Browser.Open(s.opts.ServiceURL); err != nil {
		logger.Warn().Err(err).Str("url", s.opts.ServiceURL).Msg("Could not open browser")
	}
	s.c.Console.Printf("Cerebro Companion is running at %s\n", s.opts.ServiceURL)
	s.c.Console.Println("Press Enter to stop")

	s.waitForStop(ctx)

	s.c.Console.Println("Stopping Cerebro Companion...")
	if err := s.teardown(ctx); err != nil {
		return state.OutcomeTeardownFailed, s.teardownError(err)
	}
	s.c.Console.Println("Cerebro Companion stopped")
	return state.OutcomeStopped, nil
}

// waitForStop returns on Enter or a signal. Closed input leaves only the signal.
func (s *Controller) waitForStop(ctx context.Context) {
	_, err := s.c.Console.WaitLine(ctx)
	if errors.Is(err, console.ErrInputClosed) {
		<-ctx.Done()
	}
}

func (s *Controller) interrupted(ctx context.Context, logger *logging.Logger) (state.Outcome, error) {
	logger.Warn().Msg("Interrupted, tearing down the service")
	s.c.Console.Println("Interrupted, stopping Cerebro Companion...")
	if err := s.teardown(ctx); err != nil {
		return state.OutcomeTeardownFailed, s.teardownError(err)
	}
	return state.OutcomeInterrupted, errInterrupted
}

// teardown outlives a cancelled session context
func (s *Controller) teardown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.TeardownTimeout)
	defer cancel()
	return s.c.Launcher.Teardown(ctx)
}

func (s *Controller) teardownError(err error) error {
	return &FatalError{
		Cause: "could not stop the service",
		Hint:  "stop it with: " + s.c.Launcher.DownHint(),
		Err:   err,
	}
}

func (s *Controller) record(ctx context.Context, record *state.Session, logger *logging.Logger) {
	if s.c.Recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.c.Recorder.SaveSession(ctx, record); err != nil {
		logger.Warn().Err(err).Msg("Could not record session history")
		return
	}
	if record.Outcome == state.OutcomeStopped {
		if err := s.c.Recorder.SetSetting(ctx, state.SettingLastVersion, record.Version); err != nil {
			logger.Warn().Err(err).Msg("Could not record last version")
		}
	}
}
