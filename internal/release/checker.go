package release

import (
	"context"
	"sort"

	version "github.com/hashicorp/go-version"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

// SentinelTag is reported when the repository carries no release tags
const SentinelTag = "1.0.0"

// Repository is the version-control surface the checker needs
type Repository interface {
	FetchBranch(ctx context.Context, branch string) error
	FetchTags(ctx context.Context) error
	Head(ctx context.Context) (string, error)
	RemoteHead(ctx context.Context, branch string) (string, error)
	Tags(ctx context.Context) ([]string, error)
}

// RevisionPair holds the local and remote-tracking revisions of one session
type RevisionPair struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Resolved reports whether both sides are known
func (p RevisionPair) Resolved() bool {
	return p.Local != "" && p.Remote != ""
}

// HasNewCommits is true when the resolved revisions differ. Tags play no part.
func (p RevisionPair) HasNewCommits() bool {
	return p.Resolved() && p.Local != p.Remote
}

// Status is the outcome of one update check
type Status struct {
	Revisions     RevisionPair `json:"revisions"`
	LatestTag     string       `json:"latest_tag"`
	HasNewCommits bool         `json:"has_new_commits"`
	// Fetched is false when contacting the remote failed or was skipped
	Fetched bool `json:"fetched"`
}

// Checker compares the checkout with its remote and picks the release tag
type Checker struct {
	repo   Repository
	branch string
	fetch  bool
	logger *logging.Logger
}

// NewChecker creates a checker. With fetch disabled no network command runs.
func NewChecker(repo Repository, branch string, fetch bool, logger *logging.Logger) *Checker {
	return &Checker{
		repo:   repo,
		branch: branch,
		fetch:  fetch,
		logger: logger.WithComponent("update-checker"),
	}
}

// Check never fails: every git error is logged and degrades the result.
func (c *Checker) Check(ctx context.Context) Status {
	status := Status{LatestTag: SentinelTag}

	if c.fetch {
		status.Fetched = true
		if err := c.repo.FetchBranch(ctx, c.branch); err != nil {
			status.Fetched = false
			c.logger.Warn().Err(err).Str("branch", c.branch).Msg("Could not fetch remote branch, continuing with local state")
		}
		if err := c.repo.FetchTags(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("Could not fetch tags, continuing with local tags")
		}

		local, err := c.repo.Head(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Could not resolve local revision")
		}
		remote, err := c.repo.RemoteHead(ctx, c.branch)
		if err != nil {
			c.logger.Warn().Err(err).Str("branch", c.branch).Msg("Could not resolve remote revision")
		}

		status.Revisions = RevisionPair{Local: local, Remote: remote}
		status.HasNewCommits = status.Revisions.HasNewCommits()
	}

	status.LatestTag = c.LatestTag(ctx)

	c.logger.Info().
		Str("local", short(status.Revisions.Local)).
		Str("remote", short(status.Revisions.Remote)).
		Str("latest_tag", status.LatestTag).
		Bool("has_new_commits", status.HasNewCommits).
		Msg("Update check completed")

	return status
}

// LatestTag enumerates tags and selects the highest; sentinel on error or none
func (c *Checker) LatestTag(ctx context.Context) string {
	tags, err := c.repo.Tags(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Could not list tags")
		return SentinelTag
	}
	return SelectLatestTag(tags)
}

// SelectLatestTag returns the tag with the highest version precedence.
// Tags that do not parse as versions rank below all that do and keep their
// input order among themselves. An empty set yields SentinelTag.
func SelectLatestTag(tags []string) string {
	if len(tags) == 0 {
		return SentinelTag
	}

	type candidate struct {
		tag string
		ver *version.Version
	}

	candidates := make([]candidate, 0, len(tags))
	for _, tag := range tags {
		v, _ := version.NewVersion(tag)
		candidates = append(candidates, candidate{tag: tag, ver: v})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].ver, candidates[j].ver
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.GreaterThan(b)
		}
	})

	return candidates[0].tag
}

func short(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
