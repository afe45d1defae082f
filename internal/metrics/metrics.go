package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsTotal counts launch sessions by final outcome.
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cerebro_launcher_sessions_total",
		Help: "Total number of launch sessions by outcome",
	}, []string{"outcome"})

	// UpdatesTotal counts update decisions by outcome.
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cerebro_launcher_updates_total",
		Help: "Total number of update decisions by outcome",
	}, []string{"outcome"})

	// HealthProbesTotal counts readiness probes by result.
	HealthProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cerebro_launcher_health_probes_total",
		Help: "Total number of health probes by result",
	}, []string{"result"})

	// ReadyTicks observes how many poll ticks the service needed to become ready.
	ReadyTicks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cerebro_launcher_ready_ticks",
		Help:    "Health poll ticks until the service answered",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	// LaunchDuration observes compose up --build durations.
	LaunchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cerebro_launcher_launch_duration_seconds",
		Help:    "Time spent building and starting the service",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
