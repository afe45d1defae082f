package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stanbies/cerebro-launcher/internal/cli"
	"github.com/stanbies/cerebro-launcher/internal/logging"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	// Initialize default logger
	logging.Init(logging.Config{
		Level:  getEnv("CEREBRO_LOG_LEVEL", "info"),
		Format: getEnv("CEREBRO_LOG_FORMAT", "console"),
	})

	rootCmd := cli.NewRootCommand(fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date))

	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
