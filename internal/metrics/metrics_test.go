package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAreLabelled(t *testing.T) {
	before := testutil.ToFloat64(SessionsTotal.WithLabelValues("stopped"))
	SessionsTotal.WithLabelValues("stopped").Inc()
	after := testutil.ToFloat64(SessionsTotal.WithLabelValues("stopped"))

	if after-before != 1 {
		t.Errorf("expected counter to advance by 1, got %v", after-before)
	}
}

func TestHistogramsRegistered(t *testing.T) {
	ReadyTicks.Observe(3)
	if n := testutil.CollectAndCount(ReadyTicks); n != 1 {
		t.Errorf("expected one ready_ticks series, got %d", n)
	}
}
