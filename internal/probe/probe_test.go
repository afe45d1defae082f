package probe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteWithRetries(t *testing.T) {
	errDown := errors.New("connection refused")

	tests := []struct {
		name         string
		retries      int
		succeedOn    int // attempt that succeeds, 0 = never
		wantSuccess  bool
		wantAttempts int
		wantMessage  string
	}{
		{name: "first attempt", retries: 3, succeedOn: 1, wantSuccess: true, wantAttempts: 1, wantMessage: "probe succeeded"},
		{name: "third attempt", retries: 3, succeedOn: 3, wantSuccess: true, wantAttempts: 3, wantMessage: "probe succeeded"},
		{name: "exhausted", retries: 2, wantAttempts: 2, wantMessage: errDown.Error()},
		{name: "zero retries still probes once", retries: 0, wantAttempts: 1, wantMessage: errDown.Error()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Timeout: time.Second, Retries: tc.retries, RetryBackoff: time.Millisecond}

			attempts := 0
			success, duration, msg := executeWithRetries(context.Background(), cfg, func(ctx context.Context) error {
				attempts++
				if tc.succeedOn > 0 && attempts >= tc.succeedOn {
					return nil
				}
				return errDown
			})

			if success != tc.wantSuccess || attempts != tc.wantAttempts || msg != tc.wantMessage {
				t.Errorf("got success=%v attempts=%d msg=%q", success, attempts, msg)
			}
			if duration <= 0 {
				t.Error("expected a positive duration")
			}
		})
	}
}

func TestExecuteWithRetries_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	cfg := Config{Timeout: time.Second, Retries: 5, RetryBackoff: time.Second}
	success, _, _ := executeWithRetries(ctx, cfg, func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("down")
	})

	if success || attempts != 1 {
		t.Errorf("expected one failed attempt after cancel, got success=%v attempts=%d", success, attempts)
	}
}
