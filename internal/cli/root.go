package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

// ExitError makes the process exit with Code without printing anything more
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCommand creates the launcher command tree. Without a subcommand the
// launcher runs a full start session.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cerebro-launcher",
		Short: "Cerebro Companion launcher and updater",
		Long: `Starts the Cerebro Companion service on this machine.

The launcher verifies that Docker is running, checks the project checkout for
updates (optionally pulling them), rebuilds and starts the service with
docker compose, waits until it answers and opens it in the browser. Press
Enter to stop the service again.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStart,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: user config dir)")
	rootCmd.PersistentFlags().String("project-dir", "", "Project checkout containing the compose file")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory shared with the service")
	rootCmd.PersistentFlags().String("log-level", getEnv("CEREBRO_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", getEnv("CEREBRO_LOG_FORMAT", "console"), "Log format (console, json)")

	addStartFlags(rootCmd)

	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// commandLogger initializes the global logger from the log flags
func commandLogger(cmd *cobra.Command) *logging.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return logging.Init(logging.Config{Level: level, Format: format})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
