package updater

import (
	"context"

	"github.com/stanbies/cerebro-launcher/internal/logging"
	"github.com/stanbies/cerebro-launcher/internal/metrics"
)

// Outcome describes what happened to an available update
type Outcome string

const (
	OutcomeNone     Outcome = "none"     // nothing to apply
	OutcomeDeclined Outcome = "declined" // user skipped
	OutcomeApplied  Outcome = "applied"
	OutcomeFailed   Outcome = "failed" // pull failed, pre-update code kept
)

// Puller applies the latest revision of a branch to the checkout
type Puller interface {
	Pull(ctx context.Context, branch string) error
}

// TagSource re-enumerates tags after an update
type TagSource interface {
	LatestTag(ctx context.Context) string
}

// Prompter asks the user a yes/no question
type Prompter interface {
	Confirm(ctx context.Context, question, accept string) bool
}

// StateWriter persists the resolved version
type StateWriter interface {
	Write(tag string, hasCommits bool) error
}

// Result is returned by Apply
type Result struct {
	Outcome Outcome
	// Tag is the release tag after a successful update
	Tag string
	Err error
}

// Applier asks for confirmation and pulls the tracked branch
type Applier struct {
	puller    Puller
	tags      TagSource
	prompter  Prompter
	state     StateWriter
	branch    string
	acceptKey string
	logger    *logging.Logger
}

// NewApplier creates an update applier
func NewApplier(puller Puller, tags TagSource, prompter Prompter, state StateWriter, branch, acceptKey string, logger *logging.Logger) *Applier {
	return &Applier{
		puller:    puller,
		tags:      tags,
		prompter:  prompter,
		state:     state,
		branch:    branch,
		acceptKey: acceptKey,
		logger:    logger.WithComponent("update-applier"),
	}
}

// Prompt is the question shown before pulling
const Prompt = "New updates are available. Install now?"

// Apply runs only when new commits were detected. Failures are reported in
// the Result and never abort the session.
func (a *Applier) Apply(ctx context.Context) Result {
	if !a.prompter.Confirm(ctx, Prompt, a.acceptKey) {
		a.logger.Info().Msg("Update skipped by user")
		metrics.UpdatesTotal.WithLabelValues(string(OutcomeDeclined)).Inc()
		return Result{Outcome: OutcomeDeclined}
	}

	a.logger.Info().Str("branch", a.branch).Msg("Pulling latest changes")

	if err := a.puller.Pull(ctx, a.branch); err != nil {
		a.logger.Warn().Err(err).Msg("Update failed, continuing with the current version")
		metrics.UpdatesTotal.WithLabelValues(string(OutcomeFailed)).Inc()
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	tag := a.tags.LatestTag(ctx)
	if err := a.state.Write(tag, false); err != nil {
		a.logger.Warn().Err(err).Str("tag", tag).Msg("Could not record updated version")
	}

	a.logger.Info().Str("tag", tag).Msg("Update applied")
	metrics.UpdatesTotal.WithLabelValues(string(OutcomeApplied)).Inc()
	return Result{Outcome: OutcomeApplied, Tag: tag}
}
