package state

import "time"

// Outcome is how a launch session ended
type Outcome string

const (
	OutcomeStopped            Outcome = "stopped"
	OutcomePreconditionFailed Outcome = "precondition_failed"
	OutcomeLaunchFailed       Outcome = "launch_failed"
	OutcomeCrashed            Outcome = "crashed"
	OutcomeInterrupted        Outcome = "interrupted"
	OutcomeTeardownFailed     Outcome = "teardown_failed"
)

// Session records one run of the launcher
type Session struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Version       string    `json:"version"`
	HasNewCommits bool      `json:"has_new_commits"`
	UpdateOutcome string    `json:"update_outcome"`
	Outcome       Outcome   `json:"outcome"`
	ExitCode      int       `json:"exit_code"`
	ReadyTicks    int       `json:"ready_ticks"`
	Error         string    `json:"error,omitempty"`
}

// Duration is how long the session ran
func (s Session) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
