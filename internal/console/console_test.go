package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		answer string
		accept string
		want   bool
	}{
		{"y", "y", true},
		{"Y", "y", true},
		{"  y \r", "y", true},
		{"yes", "y", false},
		{"", "y", false},
		{"n", "y", false},
		{"J", "j", true},
		{"y", "", false},
	}

	for _, tc := range tests {
		if got := IsAffirmative(tc.answer, tc.accept); got != tc.want {
			t.Errorf("IsAffirmative(%q, %q) = %v, want %v", tc.answer, tc.accept, got, tc.want)
		}
	}
}

func TestWaitLine_ReadsSequentialLines(t *testing.T) {
	c := New(strings.NewReader("first\r\nsecond\nlast"), io.Discard)
	ctx := context.Background()

	for _, want := range []string{"first", "second", "last"} {
		got, err := c.WaitLine(ctx)
		if err != nil {
			t.Fatalf("WaitLine failed: %v", err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	if _, err := c.WaitLine(ctx); !errors.Is(err, ErrInputClosed) {
		t.Errorf("expected ErrInputClosed after EOF, got %v", err)
	}
	if _, err := c.WaitLine(ctx); !errors.Is(err, ErrInputClosed) {
		t.Errorf("expected ErrInputClosed to repeat, got %v", err)
	}
}

func TestWaitLine_CancelledContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	c := New(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.WaitLine(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// A line typed after the abandoned wait is delivered to the next waiter.
	go func() { _, _ = pw.Write([]byte("later\n")) }()
	got, err := c.WaitLine(context.Background())
	if err != nil || got != "later" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("Y\nyes\n"), &out)

	if !c.Confirm(context.Background(), "Install now?", "y") {
		t.Error("expected Y to be affirmative")
	}
	if c.Confirm(context.Background(), "Install now?", "y") {
		t.Error("expected 'yes' to be treated as no")
	}
	if c.Confirm(context.Background(), "Install now?", "y") {
		t.Error("expected closed input to be treated as no")
	}
	if !strings.Contains(out.String(), "Install now? [y/N]") {
		t.Errorf("prompt not printed: %q", out.String())
	}
}
