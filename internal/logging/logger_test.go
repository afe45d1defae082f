package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_JSONIncludesComponentAndSession(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: "json", Output: &buf})

	logger.WithComponent("health-waiter").WithSession("abc123").Info().Msg("polling")

	out := buf.String()
	for _, want := range []string{`"component":"health-waiter"`, `"session_id":"abc123"`, `"message":"polling"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got %s", want, out)
		}
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "chatty", Format: "json", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info line missing: %s", out)
	}
}
