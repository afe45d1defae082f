package session

import "errors"

// errInterrupted marks a session ended by a process signal
var errInterrupted = errors.New("session interrupted")

// FatalError ends a session with a one-line cause and a remediation hint
type FatalError struct {
	Cause string
	Hint  string
	Err   error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return e.Cause
	}
	return e.Cause + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
