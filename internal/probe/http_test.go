package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

func TestHTTPProbe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := Config{
		Timeout:      5 * time.Second,
		Retries:      1,
		RetryBackoff: 10 * time.Millisecond,
	}

	probe := NewHTTPProbe(server.URL, config, logging.Nop())
	result := probe.Execute(context.Background())

	if !result.Success {
		t.Errorf("expected success, got failure: %s", result.Message)
	}
}

func TestHTTPProbe_Any2xxIsReady(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted, http.StatusNoContent} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		probe := NewHTTPProbe(server.URL, Config{Timeout: time.Second}, logging.Nop())
		if err := probe.Check(context.Background()); err != nil {
			t.Errorf("status %d: expected ready, got %v", status, err)
		}
		server.Close()
	}
}

func TestHTTPProbe_Non2xxIsNotReady(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusUnauthorized, http.StatusNotFound} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		probe := NewHTTPProbe(server.URL, Config{Timeout: time.Second}, logging.Nop())
		if err := probe.Check(context.Background()); err == nil {
			t.Errorf("status %d: expected not ready", status)
		}
		server.Close()
	}
}

func TestHTTPProbe_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := Config{
		Timeout:      100 * time.Millisecond,
		Retries:      1,
		RetryBackoff: 10 * time.Millisecond,
	}

	probe := NewHTTPProbe(server.URL, config, logging.Nop())
	result := probe.Execute(context.Background())

	if result.Success {
		t.Error("expected failure for timeout")
	}
}

func TestHTTPProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	probe := NewHTTPProbe(url, Config{Timeout: time.Second}, logging.Nop())
	if err := probe.Check(context.Background()); err == nil {
		t.Error("expected network error to count as not ready")
	}
}
