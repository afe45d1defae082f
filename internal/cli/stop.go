package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the service (docker compose down)",
		Long: `Stops a Cerebro Companion service left running, for example after the
launcher window was closed.`,
		RunE: runStop,
	}
}

func runStop(cmd *cobra.Command, args []string) error {
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

	fmt.Println("Stopping Cerebro Companion...")
	if err := a.compose.Down(ctx); err != nil {
		return fmt.Errorf("could not stop the service (try %q): %w", a.compose.Hint("down"), err)
	}
	fmt.Println("Cerebro Companion stopped")
	return nil
}
