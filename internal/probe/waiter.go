package probe

import (
	"context"
	"errors"
	"time"

	"github.com/stanbies/cerebro-launcher/internal/logging"
	"github.com/stanbies/cerebro-launcher/internal/metrics"
)

var (
	// ErrServiceExited is returned when the container disappears while waiting
	ErrServiceExited = errors.New("service container exited before becoming ready")

	// ErrInterrupted is returned when the wait is cancelled
	ErrInterrupted = errors.New("health wait interrupted")
)

// Status is the readiness state of the service
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusReady   Status = "ready"
	StatusCrashed Status = "crashed"
)

// Liveness reports running containers matching a name
type Liveness interface {
	RunningContainers(ctx context.Context, name string) ([]string, error)
}

// Endpoint performs one readiness check
type Endpoint interface {
	Check(ctx context.Context) error
}

// Policy configures the readiness loop. SoftTimeoutTicks of 0 disables the
// slow-start warning; it never turns into a hard failure.
type Policy struct {
	Interval         time.Duration
	DetectCrash      bool
	SoftTimeoutTicks int
}

// Outcome is the terminal state of a wait
type Outcome struct {
	Status Status `json:"status"`
	// Ticks is the 1-based tick on which the terminal state was reached
	Ticks int `json:"ticks"`
	// SlowStart is set once the soft timeout warning fired
	SlowStart bool `json:"slow_start"`
}

// Waiter polls the service until it answers or its container is gone
type Waiter struct {
	endpoint    Endpoint
	liveness    Liveness
	serviceName string
	policy      Policy
	logger      *logging.Logger

	// OnSlowStart is called once when the soft timeout is exceeded
	OnSlowStart func(ticks int)
}

// NewWaiter creates a health waiter. liveness may be nil when crash
// detection is disabled.
func NewWaiter(endpoint Endpoint, liveness Liveness, serviceName string, policy Policy, logger *logging.Logger) *Waiter {
	if policy.Interval <= 0 {
		policy.Interval = time.Second
	}
	if liveness == nil {
		policy.DetectCrash = false
	}
	return &Waiter{
		endpoint:    endpoint,
		liveness:    liveness,
		serviceName: serviceName,
		policy:      policy,
		logger:      logger.WithComponent("health-waiter"),
	}
}

// Wait blocks until the service is ready (nil error), the container exited
// (ErrServiceExited) or ctx is cancelled (ErrInterrupted).
func (w *Waiter) Wait(ctx context.Context) (Outcome, error) {
	outcome := Outcome{Status: StatusWaiting}
	failures := 0

	for tick := 1; ; tick++ {
		outcome.Ticks = tick

		if ctx.Err() != nil {
			return outcome, ErrInterrupted
		}

		if w.policy.DetectCrash {
			ids, err := w.liveness.RunningContainers(ctx, w.serviceName)
			switch {
			case err != nil && ctx.Err() != nil:
				return outcome, ErrInterrupted
			case err != nil:
				w.logger.Warn().Err(err).Int("tick", tick).Msg("Could not query container state")
			case len(ids) == 0:
				outcome.Status = StatusCrashed
				w.logger.Error().Str("service", w.serviceName).Int("tick", tick).Msg("Service container is no longer running")
				return outcome, ErrServiceExited
			}
		}

		err := w.endpoint.Check(ctx)
		if err == nil {
			outcome.Status = StatusReady
			metrics.HealthProbesTotal.WithLabelValues("success").Inc()
			metrics.ReadyTicks.Observe(float64(tick))
			w.logger.Info().Int("tick", tick).Msg("Service is ready")
			return outcome, nil
		}
		metrics.HealthProbesTotal.WithLabelValues("failure").Inc()

		failures++
		w.logger.Debug().Err(err).Int("tick", tick).Msg("Service not ready yet")

		if w.policy.SoftTimeoutTicks > 0 && failures > w.policy.SoftTimeoutTicks && !outcome.SlowStart {
			outcome.SlowStart = true
			w.logger.Warn().Int("ticks", failures).Msg("Service is slow to start, still waiting")
			if w.OnSlowStart != nil {
				w.OnSlowStart(failures)
			}
		}

		timer := time.NewTimer(w.policy.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return outcome, ErrInterrupted
		case <-timer.C:
		}
	}
}
