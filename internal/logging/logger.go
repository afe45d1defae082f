package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with launcher-specific context helpers
type Logger struct {
	*zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string
	Format string // "json" or "console"

	// Output defaults to stderr so that prompts on stdout stay readable
	Output io.Writer
}

// New creates a new configured logger
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: &logger}
}

// Default returns a logger with default configuration
func Default() *Logger {
	return New(Config{
		Level:  "info",
		Format: "console",
	})
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{Logger: &logger}
}

// WithComponent returns a new logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	logger := l.Logger.With().Str("component", component).Logger()
	return &Logger{Logger: &logger}
}

// WithSession returns a new logger tagged with a launch session ID
func (l *Logger) WithSession(sessionID string) *Logger {
	logger := l.Logger.With().Str("session_id", sessionID).Logger()
	return &Logger{Logger: &logger}
}

// WithService returns a new logger with service context
func (l *Logger) WithService(serviceName, url string) *Logger {
	logger := l.Logger.With().
		Str("service", serviceName).
		Str("url", url).
		Logger()
	return &Logger{Logger: &logger}
}

// Init initializes the global logger
func Init(cfg Config) *Logger {
	logger := New(cfg)
	log.Logger = *logger.Logger
	return logger
}
