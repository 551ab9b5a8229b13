package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealvoice/mealvoice/internal/common"
)

func newOpenAITestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestOpenAIClient_Complete(t *testing.T) {
	server := newOpenAITestServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"[{\"name\":\"rice\"}]"}}]}`)
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("newOpenAIClient() error = %v", err)
	}

	content, err := client.Complete(context.Background(), Request{
		System: "detect foods",
		Prompt: "half a kilo of chicken",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != `[{"name":"rice"}]` {
		t.Errorf("unexpected content %q", content)
	}
}

func TestOpenAIClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, common.ErrAuthFailure},
		{"forbidden", http.StatusForbidden, common.ErrAuthFailure},
		{"rate limited", http.StatusTooManyRequests, common.ErrRateLimited},
		{"payload too large", http.StatusRequestEntityTooLarge, common.ErrPayloadTooLarge},
		{"server error", http.StatusInternalServerError, common.ErrBackendProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newOpenAITestServer(t, tt.status, `{"error":"nope"}`)
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
			if err != nil {
				t.Fatalf("newOpenAIClient() error = %v", err)
			}

			_, err = client.Complete(context.Background(), Request{Prompt: "x"})
			if !errors.Is(err, tt.want) {
				t.Errorf("Complete() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenAIClient_NetworkFailure(t *testing.T) {
	server := newOpenAITestServer(t, http.StatusOK, "{}")
	server.Close() // refuse connections

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("newOpenAIClient() error = %v", err)
	}

	_, err = client.Complete(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, common.ErrNetworkFailure) {
		t.Errorf("Complete() error = %v, want ErrNetworkFailure", err)
	}
}

func TestOpenAIClient_RequiresAPIKey(t *testing.T) {
	if _, err := newOpenAIClient(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
