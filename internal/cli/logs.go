package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewLogsCommand creates the logs command
func NewLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the service container logs",
		RunE:  runLogs,
	}

	cmd.Flags().Int("tail", 200, "Number of lines from the end of the logs (0 for all)")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	tail, _ := cmd.Flags().GetInt("tail")
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

	out, err := a.engine.Logs(ctx, cfg.ServiceName, tail)
	fmt.Print(out)
	if err != nil {
		return fmt.Errorf("could not read logs (try %q): %w", a.crashHint(), err)
	}
	return nil
}
