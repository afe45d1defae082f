package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stanbies/cerebro-launcher/internal/release"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check Docker and look for updates without starting anything",
		Long: `Verifies that the Docker engine is active, fetches the tracked branch and
reports the local and remote revisions and the newest release tag. Nothing
is pulled, started or written.`,
		RunE: runCheck,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("no-update", false, "Skip fetching from the remote")

	return cmd
}

type checkReport struct {
	EngineActive bool           `json:"engine_active"`
	EngineError  string         `json:"engine_error,omitempty"`
	Branch       string         `json:"branch"`
	Update       release.Status `json:"update"`
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	report := checkReport{EngineActive: true, Branch: cfg.Update.Branch}
	if err := a.engine.Info(ctx); err != nil {
		report.EngineActive = false
		report.EngineError = err.Error()
	}
	report.Update = a.checker().Check(ctx)

	if jsonOutput {
		err = outputJSON(os.Stdout, report)
	} else {
		err = renderCheck(os.Stdout, report)
	}
	if err != nil {
		return err
	}

	if !report.EngineActive {
		return &ExitError{Code: 1}
	}
	return nil
}

func renderCheck(w io.Writer, report checkReport) error {
	engine := "active"
	if !report.EngineActive {
		engine = "not active"
	}

	table := tablewriter.NewWriter(w)
	table.Header("CHECK", "RESULT")
	rows := [][]string{
		{"Docker engine", engine},
		{"Branch", report.Branch},
		{"Fetched", yesNo(report.Update.Fetched)},
		{"Local revision", orDash(report.Update.Revisions.Local)},
		{"Remote revision", orDash(report.Update.Revisions.Remote)},
		{"Latest tag", report.Update.LatestTag},
		{"New commits", yesNo(report.Update.HasNewCommits)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if report.EngineError != "" {
		_, _ = fmt.Fprintf(w, "\nDocker is not active: start Docker Desktop and try again.\n")
	}
	return nil
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
