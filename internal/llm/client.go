// Package llm provides clients for the language-inference backends that power
// quantity detection and nutrition estimation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mealvoice/mealvoice/internal/common"
)

// Client defines the interface for LLM providers. Implementations return the
// raw completion text; structured parsing happens in the calling stage via
// the payload package.
type Client interface {
	// Name identifies the provider for provenance records.
	Name() string
	// Complete sends one completion request and returns the response text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Config holds configuration for an LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	Timeout     time.Duration
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// statusError maps an HTTP status onto the pipeline error taxonomy.
func statusError(provider string, status int, body []byte) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = common.ErrAuthFailure
	case status == http.StatusTooManyRequests:
		kind = common.ErrRateLimited
	case status == http.StatusRequestEntityTooLarge:
		kind = common.ErrPayloadTooLarge
	default:
		kind = common.ErrBackendProtocol
	}
	return fmt.Errorf("%w: %s API error (status %d): %s", kind, provider, status, string(body))
}

// transportError wraps a transport-level failure as a network failure.
// User cancellation is surfaced as-is; stage timeouts count as backend
// failures so the orchestrator can fall back.
func transportError(ctx context.Context, provider string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s request failed: %v", common.ErrNetworkFailure, provider, err)
}
