package executor

import (
	"context"
	"time"
)

type composeRunner interface {
	UpBuild(ctx context.Context, env []string) error
	Down(ctx context.Context) error
	Hint(args ...string) string
}

// Clock supplies the cache-bust timestamp
type Clock func() time.Time
