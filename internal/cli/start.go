package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stanbies/cerebro-launcher/internal/browser"
	"github.com/stanbies/cerebro-launcher/internal/config"
	"github.com/stanbies/cerebro-launcher/internal/console"
	"github.com/stanbies/cerebro-launcher/internal/executor"
	"github.com/stanbies/cerebro-launcher/internal/metrics"
	"github.com/stanbies/cerebro-launcher/internal/session"
	"github.com/stanbies/cerebro-launcher/internal/updater"
)

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Update, start and open Cerebro Companion",
		Long: `Runs one launcher session: checks Docker, looks for updates, rebuilds and
starts the service, waits until it is ready and opens the browser. The
service is stopped when Enter is pressed or the launcher is interrupted.`,
		RunE: runStart,
	}

	addStartFlags(cmd)

	return cmd
}

func addStartFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-update", false, "Skip the update check and never prompt")
	cmd.Flags().Bool("no-browser", false, "Do not open the browser when the service is ready")
	cmd.Flags().Bool("no-pause", false, "Do not wait for Enter before exiting after an error")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := commandLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Warn().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	con := console.New(os.Stdin, os.Stdout)
	checker := a.checker()
	applier := updater.NewApplier(a.git, checker, con, a.state, cfg.Update.Branch, cfg.Update.AcceptKey, logger)
	launcher := executor.NewComposeExecutor(a.compose, config.DataDirEnv, cfg.DataDir, time.Now, logger)

	waiter := a.waiter()
	waiter.OnSlowStart = func(ticks int) {
		con.Printf("Server is slow to start (%s), still waiting...\n", time.Duration(ticks)*cfg.Health.Interval)
	}

	var opener browser.Opener = browser.System{}
	if !cfg.OpenBrowser {
		opener = browser.Disabled{}
	}

	components := session.Components{
		Engine:   a.engine,
		Checker:  checker,
		State:    a.state,
		Updater:  applier,
		Launcher: launcher,
		Waiter:   waiter,
		Browser:  opener,
		Console:  con,
	}

	store, err := a.openHistory(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.HistoryDB).Msg("Launch history unavailable")
	} else {
		defer func() { _ = store.Close() }()
		components.Recorder = store
	}

	controller := session.NewController(components, session.Options{
		ServiceURL:  cfg.ServiceURL,
		CrashHint:   a.crashHint(),
		PauseOnExit: cfg.PauseOnExit,
	}, logger)

	if code := controller.Run(ctx); code != session.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
