package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stanbies/cerebro-launcher/internal/state"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent launcher sessions",
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of sessions to show")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	logger := commandLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := contextOf(cmd)

	store, err := state.NewSQLiteStore(cfg.HistoryDB, logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Initialize(ctx); err != nil {
		return err
	}

	sessions, err := store.ListSessions(ctx, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(os.Stdout, map[string]interface{}{
			"sessions": sessions,
		})
	}
	return renderHistory(os.Stdout, sessions)
}

func renderHistory(w io.Writer, sessions []state.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No launcher sessions recorded yet.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("STARTED", "DURATION", "VERSION", "UPDATE", "OUTCOME", "EXIT", "READY AFTER")
	for _, s := range sessions {
		ready := "-"
		if s.ReadyTicks > 0 {
			ready = strconv.Itoa(s.ReadyTicks) + " ticks"
		}
		duration := "-"
		if d := s.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		row := []string{
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			s.Version,
			s.UpdateOutcome,
			string(s.Outcome),
			strconv.Itoa(s.ExitCode),
			ready,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
