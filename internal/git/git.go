package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/stanbies/cerebro-launcher/internal/runner"
)

// Client runs git commands against one checkout
type Client struct {
	dir    string
	remote string
	run    runner.Runner
}

// NewClient creates a git client for the checkout at dir tracking remote
func NewClient(dir, remote string, r runner.Runner) *Client {
	if remote == "" {
		remote = "origin"
	}
	return &Client{dir: dir, remote: remote, run: r}
}

// Remote returns the tracked remote name
func (c *Client) Remote() string {
	return c.remote
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	out, err := c.run.Run(ctx, runner.Command{Name: "git", Args: args, Dir: c.dir})
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return strings.TrimSpace(out), nil
}

// FetchBranch updates the remote-tracking ref for branch
func (c *Client) FetchBranch(ctx context.Context, branch string) error {
	_, err := c.git(ctx, "fetch", c.remote, branch)
	return err
}

// FetchTags fetches all tags from the default remote
func (c *Client) FetchTags(ctx context.Context) error {
	_, err := c.git(ctx, "fetch", "--tags")
	return err
}

// Head returns the checked-out revision
func (c *Client) Head(ctx context.Context) (string, error) {
	return c.git(ctx, "rev-parse", "HEAD")
}

// RemoteHead returns the tip of the remote-tracking branch
func (c *Client) RemoteHead(ctx context.Context, branch string) (string, error) {
	return c.git(ctx, "rev-parse", c.remote+"/"+branch)
}

// Tags lists tags, newest version first as ordered by git
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	out, err := c.git(ctx, "tag", "--sort=-version:refname")
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if tag := strings.TrimSpace(line); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// Pull fetches and merges branch from the remote
func (c *Client) Pull(ctx context.Context, branch string) error {
	_, err := c.git(ctx, "pull", c.remote, branch)
	return err
}
