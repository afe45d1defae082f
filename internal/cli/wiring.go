package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stanbies/cerebro-launcher/internal/config"
	"github.com/stanbies/cerebro-launcher/internal/docker"
	"github.com/stanbies/cerebro-launcher/internal/git"
	"github.com/stanbies/cerebro-launcher/internal/logging"
	"github.com/stanbies/cerebro-launcher/internal/probe"
	"github.com/stanbies/cerebro-launcher/internal/release"
	"github.com/stanbies/cerebro-launcher/internal/runner"
	"github.com/stanbies/cerebro-launcher/internal/state"
	"github.com/stanbies/cerebro-launcher/internal/versionfile"
)

// historyRetention bounds how long launch sessions are kept
const historyRetention = 90 * 24 * time.Hour

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path, flagOverrides(cmd))
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// flagOverrides maps explicitly set flags onto the configuration
func flagOverrides(cmd *cobra.Command) config.Override {
	flags := cmd.Flags()
	return func(c *config.Config) {
		if flags.Changed("project-dir") {
			c.ProjectDir, _ = flags.GetString("project-dir")
		}
		if flags.Changed("data-dir") {
			c.DataDir, _ = flags.GetString("data-dir")
		}
		if noUpdate, _ := flags.GetBool("no-update"); noUpdate {
			c.Update.Enabled = false
		}
		if noBrowser, _ := flags.GetBool("no-browser"); noBrowser {
			c.OpenBrowser = false
		}
		if noPause, _ := flags.GetBool("no-pause"); noPause {
			c.PauseOnExit = false
		}
		if flags.Changed("metrics-addr") {
			c.MetricsAddr, _ = flags.GetString("metrics-addr")
		}
	}
}

// app holds the components shared by the commands
type app struct {
	cfg     config.Config
	logger  *logging.Logger
	engine  docker.Engine
	git     *git.Client
	compose *docker.ComposeRunner
	state   *versionfile.Writer
	closers []func() error
}

func newApp(cfg config.Config, logger *logging.Logger) (*app, error) {
	r := runner.NewExecRunner(logger)

	a := &app{
		cfg:    cfg,
		logger: logger,
		git:    git.NewClient(cfg.ProjectDir, cfg.Update.Remote, r),
		state:  versionfile.NewWriter(cfg.DataDir),
	}

	switch cfg.Engine.Mode {
	case config.EngineModeAPI:
		client, err := docker.NewClient()
		if err != nil {
			return nil, err
		}
		a.engine = client
		a.closers = append(a.closers, client.Close)
	default:
		a.engine = docker.NewCLIEngine(cfg.Engine.Binary, r)
	}

	composeBinary := cfg.Engine.ComposeBinary
	if composeBinary == "" {
		composeBinary = cfg.Engine.Binary
	}
	a.compose = docker.NewComposeRunner(docker.ComposeOptions{
		Binary:      composeBinary,
		File:        cfg.ComposeFilePath(),
		ProjectName: cfg.Compose.ProjectName,
		Dir:         cfg.ProjectDir,
	}, r)

	return a, nil
}

func (a *app) checker() *release.Checker {
	return release.NewChecker(a.git, a.cfg.Update.Branch, a.cfg.Update.Enabled, a.logger)
}

func (a *app) healthProbe() *probe.HTTPProbe {
	probeConfig := probe.DefaultConfig()
	probeConfig.Timeout = a.cfg.Health.RequestTimeout
	return probe.NewHTTPProbe(a.cfg.HealthURL(), probeConfig, a.logger)
}

func (a *app) waiter() *probe.Waiter {
	policy := probe.Policy{
		Interval:         a.cfg.Health.Interval,
		DetectCrash:      a.cfg.Health.DetectCrash,
		SoftTimeoutTicks: a.cfg.Health.SoftTimeoutTicks,
	}
	return probe.NewWaiter(a.healthProbe(), a.engine, a.cfg.ServiceName, policy, a.logger.WithService(a.cfg.ServiceName, a.cfg.ServiceURL))
}

func (a *app) crashHint() string {
	return docker.LogsHint(a.cfg.Engine.Binary, a.cfg.ServiceName)
}

// openHistory opens the launch history and drops sessions past retention
func (a *app) openHistory(ctx context.Context) (*state.SQLiteStore, error) {
	store, err := state.NewSQLiteStore(a.cfg.HistoryDB, a.logger)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.PruneSessions(ctx, time.Now().Add(-historyRetention)); err != nil {
		a.logger.Warn().Err(err).Msg("Could not prune launch history")
	}
	return store, nil
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}
