package probe

import (
	"context"
	"time"
)

// Result is the outcome of a single probe execution
type Result struct {
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message"`
}

// Config contains the per-request probe settings
type Config struct {
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
}

// DefaultConfig returns the settings used for one-shot status probes
func DefaultConfig() Config {
	return Config{
		Timeout:      2 * time.Second,
		Retries:      1,
		RetryBackoff: 1 * time.Second,
	}
}

// executeWithRetries runs probeFn up to config.Retries times (at least once),
// each attempt bounded by config.Timeout. It stops early when ctx is done.
func executeWithRetries(ctx context.Context, config Config, probeFn func(context.Context) error) (bool, time.Duration, string) {
	start := time.Now()
	attempts := max(config.Retries, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return false, time.Since(start), "context canceled during retry backoff"
			case <-time.After(config.RetryBackoff):
			}
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if config.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		}
		lastErr = probeFn(attemptCtx)
		cancel()

		if lastErr == nil {
			return true, time.Since(start), "probe succeeded"
		}
		if ctx.Err() != nil {
			break
		}
	}

	return false, time.Since(start), lastErr.Error()
}
