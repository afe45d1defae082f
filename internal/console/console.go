package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputClosed is returned once the input stream has ended
var ErrInputClosed = errors.New("console input closed")

type line struct {
	text string
	err  error
}

// Console reads whole lines from an input stream and writes prompts.
// A single reader goroutine owns the input so that an abandoned wait
// never leaves a second reader competing for the next line.
type Console struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan line
}

// New creates a console over the given streams
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

func (c *Console) start() {
	c.once.Do(func() {
		c.lines = make(chan line)
		go func() {
			reader := bufio.NewReader(c.in)
			for {
				text, err := reader.ReadString('\n')
				if err != nil {
					if text != "" && errors.Is(err, io.EOF) {
						c.lines <- line{text: text}
					}
					if errors.Is(err, io.EOF) {
						err = ErrInputClosed
					}
					for {
						c.lines <- line{err: err}
					}
				}
				c.lines <- line{text: text}
			}
		}()
	})
}

// WaitLine blocks until one line of input arrives or ctx is done. The
// returned text has its line ending removed.
func (c *Console) WaitLine(ctx context.Context) (string, error) {
	c.start()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-c.lines:
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimRight(l.text, "\r\n"), nil
	}
}

// Printf writes to the console output
func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Println writes a line to the console output
func (c *Console) Println(args ...any) {
	_, _ = fmt.Fprintln(c.out, args...)
}

// Confirm asks a yes/no question. Only an answer equal to accept (ignoring
// case and surrounding space) is affirmative; anything else, closed input
// or a cancelled context means no.
func (c *Console) Confirm(ctx context.Context, question, accept string) bool {
	c.Printf("%s [%s/N] ", question, strings.ToLower(accept))

	answer, err := c.WaitLine(ctx)
	if err != nil {
		c.Println()
		return false
	}
	return IsAffirmative(answer, accept)
}

// Pause prints message and waits for Enter or ctx cancellation
func (c *Console) Pause(ctx context.Context, message string) {
	c.Println(message)
	_, _ = c.WaitLine(ctx)
}

// IsAffirmative reports whether answer matches the accept letter
func IsAffirmative(answer, accept string) bool {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), accept)
}
