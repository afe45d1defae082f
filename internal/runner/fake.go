package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Response is a canned result for a faked command
type Response struct {
	Output string
	Err    error
}

// Fake records commands and answers them from a table keyed by command line.
// Unknown commands succeed with empty output unless Strict is set.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []Command

	// Handler, when set, answers every command before the table is consulted
	Handler func(cmd Command) (Response, bool)
	Strict  bool
}

var _ Runner = (*Fake)(nil)

// NewFake returns an empty fake runner
func NewFake() *Fake {
	return &Fake{responses: map[string][]Response{}}
}

// On queues a response for the exact command line (e.g. "git rev-parse HEAD").
// Several responses for one key are consumed in order; the last one repeats.
func (f *Fake) On(line string, output string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = append(f.responses[line], Response{Output: output, Err: err})
	return f
}

// Run records the command and returns the canned response
func (f *Fake) Run(ctx context.Context, c Command) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if handler != nil {
		if resp, ok := handler(c); ok {
			return resp.Output, resp.Err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	queue, ok := f.responses[c.String()]
	if !ok || len(queue) == 0 {
		if f.Strict {
			return "", &Error{Command: c, Err: errors.New("unexpected command")}
		}
		return "", nil
	}

	resp := queue[0]
	if len(queue) > 1 {
		f.responses[c.String()] = queue[1:]
	}
	return resp.Output, resp.Err
}

// Calls returns every recorded command
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}

// Count returns how many recorded commands start with the given prefix
func (f *Fake) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.String(), prefix) {
			n++
		}
	}
	return n
}
