package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stanbies/cerebro-launcher/internal/state"
	"github.com/stanbies/cerebro-launcher/internal/versionfile"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the recorded version and whether the service is running",
		Long: `Reads the version state file, asks Docker whether the service container is
running and probes the service status endpoint once.`,
		RunE: runStatus,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

type statusReport struct {
	VersionFile   string   `json:"version_file"`
	Version       string   `json:"version,omitempty"`
	HasCommits    bool     `json:"has_commits"`
	LastLaunched  string   `json:"last_launched,omitempty"`
	EngineActive  bool     `json:"engine_active"`
	ContainerIDs  []string `json:"container_ids"`
	URL           string   `json:"url"`
	Healthy       bool     `json:"healthy"`
	HealthMessage string   `json:"health_message,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
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

	report := statusReport{VersionFile: a.state.Path(), URL: cfg.ServiceURL}

	current, err := a.state.Read()
	switch {
	case err == nil:
		report.Version = current.Tag
		report.HasCommits = current.HasCommits
	case errors.Is(err, versionfile.ErrNotFound):
	default:
		logger.Warn().Err(err).Msg("Could not read version state")
	}

	report.LastLaunched = lastLaunched(ctx, a)

	if err := a.engine.Info(ctx); err == nil {
		report.EngineActive = true
		ids, err := a.engine.RunningContainers(ctx, cfg.ServiceName)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not list containers")
		}
		report.ContainerIDs = ids
	}

	result := a.healthProbe().Execute(ctx)
	report.Healthy = result.Success
	report.HealthMessage = result.Message

	if jsonOutput {
		return outputJSON(os.Stdout, report)
	}
	return renderStatus(os.Stdout, report)
}

// lastLaunched reads the version of the last cleanly stopped session
func lastLaunched(ctx context.Context, a *app) string {
	if _, err := os.Stat(a.cfg.HistoryDB); err != nil {
		return ""
	}
	store, err := a.openHistory(ctx)
	if err != nil {
		return ""
	}
	defer func() { _ = store.Close() }()

	value, err := store.GetSetting(ctx, state.SettingLastVersion)
	if err != nil {
		return ""
	}
	return value
}

func renderStatus(w io.Writer, report statusReport) error {
	version := report.Version
	if version == "" {
		version = "unknown (no version file yet)"
	} else if report.HasCommits {
		version += " (updates available)"
	}

	container := "not running"
	switch {
	case !report.EngineActive:
		container = "unknown (Docker not active)"
	case len(report.ContainerIDs) > 0:
		container = "running (" + strings.Join(report.ContainerIDs, ", ") + ")"
	}

	health := "not responding"
	if report.Healthy {
		health = "ready"
	}

	table := tablewriter.NewWriter(w)
	table.Header("ITEM", "VALUE")
	rows := [][]string{
		{"Version", version},
		{"Last launched", orDash(report.LastLaunched)},
		{"Version file", report.VersionFile},
		{"Container", container},
		{"Service", fmt.Sprintf("%s at %s", health, report.URL)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
