package runner

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

func TestExecRunner_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	r := NewExecRunner(logging.Nop())
	_, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	var cmdErr *Error
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if cmdErr.Stderr != "boom" {
		t.Errorf("expected captured stderr, got %q", cmdErr.Stderr)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("expected exit code 3 to be reachable via errors.As, got %v", err)
	}
}

func TestExecRunner_EnvAndDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	r := NewExecRunner(logging.Nop())
	out, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $CACHE_BUST; pwd"},
		Dir:  dir,
		Env:  []string{"CACHE_BUST=1700000000"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.HasPrefix(out, "1700000000\n") {
		t.Errorf("expected env to be passed through, got %q", out)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("expected working dir %s in output %q", dir, out)
	}
}

func TestFake_QueuedResponses(t *testing.T) {
	f := NewFake().
		On("docker ps -q -f name=svc", "abc\n", nil).
		On("docker ps -q -f name=svc", "", nil)

	cmd := Command{Name: "docker", Args: []string{"ps", "-q", "-f", "name=svc"}}
	ctx := context.Background()

	first, _ := f.Run(ctx, cmd)
	second, _ := f.Run(ctx, cmd)
	third, _ := f.Run(ctx, cmd)

	if first != "abc\n" || second != "" || third != "" {
		t.Errorf("unexpected sequence %q %q %q", first, second, third)
	}
	if f.Count("docker ps") != 3 {
		t.Errorf("expected 3 recorded calls, got %d", f.Count("docker ps"))
	}
}

func TestFake_Strict(t *testing.T) {
	f := NewFake()
	f.Strict = true
	if _, err := f.Run(context.Background(), Command{Name: "git", Args: []string{"pull"}}); err == nil {
		t.Fatal("expected strict fake to reject unknown command")
	}
}
