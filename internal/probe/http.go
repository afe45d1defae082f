package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

// HTTPProbe checks the service status endpoint; any 2xx is healthy
type HTTPProbe struct {
	url    string
	config Config
	client *http.Client
	logger *logging.Logger
}

// NewHTTPProbe creates a new HTTP probe
func NewHTTPProbe(url string, config Config, logger *logging.Logger) *HTTPProbe {
	return &HTTPProbe{
		url:    url,
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		logger: logger.WithComponent("http-probe"),
	}
}

// URL returns the probed endpoint
func (p *HTTPProbe) URL() string {
	return p.url
}

// Execute runs the probe with the configured retries
func (p *HTTPProbe) Execute(ctx context.Context) *Result {
	success, duration, message := executeWithRetries(ctx, p.config, p.Check)

	if success {
		p.logger.Debug().Str("url", p.url).Dur("duration", duration).Msg("HTTP probe succeeded")
	} else {
		p.logger.Debug().Str("url", p.url).Str("error", message).Msg("HTTP probe failed")
	}

	return &Result{
		Success:  success,
		Duration: duration,
		Message:  message,
	}
}

// Check performs a single GET bounded by the configured timeout
func (p *HTTPProbe) Check(ctx context.Context) error {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
