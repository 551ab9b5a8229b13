package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealvoice/mealvoice/internal/common"
)

func TestAnthropicClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("missing anthropic-version header")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"[]"}]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("newAnthropicClient() error = %v", err)
	}

	content, err := client.Complete(context.Background(), Request{Prompt: "it is raining today"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "[]" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestAnthropicClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("newAnthropicClient() error = %v", err)
	}

	_, err = client.Complete(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, common.ErrRateLimited) {
		t.Errorf("Complete() error = %v, want ErrRateLimited", err)
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	if _, err := NewClient(Config{Provider: "cohere"}); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
