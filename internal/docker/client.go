package docker

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Client wraps the Docker API client and implements Engine over the API socket
type Client struct {
	cli *client.Client
}

var _ Engine = (*Client)(nil)

// NewClient creates a new Docker client from the environment (DOCKER_HOST etc.)
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &Client{cli: cli}, nil
}

// Close closes the Docker client
func (c *Client) Close() error {
	return c.cli.Close()
}

// Info verifies the daemon answers an info request
func (c *Client) Info(ctx context.Context) error {
	if _, err := c.cli.Info(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return nil
}

// RunningContainers lists running containers filtered by name
func (c *Client) RunningContainers(ctx context.Context, name string) ([]string, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	ids := make([]string, 0, len(containers))
	for _, ctr := range containers {
		ids = append(ids, ctr.ID)
	}
	return ids, nil
}

// Logs gets container logs with stdout and stderr demultiplexed into one buffer
func (c *Client) Logs(ctx context.Context, name string, tail int) (string, error) {
	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	}
	if tail > 0 {
		options.Tail = strconv.Itoa(tail)
	}

	logs, err := c.cli.ContainerLogs(ctx, name, options)
	if err != nil {
		return "", fmt.Errorf("failed to get logs for container %s: %w", name, err)
	}
	defer logs.Close()

	var out bytes.Buffer
	if _, err := stdcopy.StdCopy(&out, &out, logs); err != nil {
		return out.String(), fmt.Errorf("failed to read logs for container %s: %w", name, err)
	}
	return out.String(), nil
}
