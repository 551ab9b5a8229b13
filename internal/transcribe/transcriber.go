// Package transcribe converts captured audio artifacts into text using a
// selectable speech-inference backend.
//
// Supported backends:
//   - whisper: OpenAI-compatible transcription API (default)
//   - deepgram: Deepgram pre-recorded API, reports word-level confidence
//
// Failures propagate immediately; retry and fallback policy lives with the
// caller.
package transcribe

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

// Config holds configuration for a transcription backend.
type Config struct {
	Backend string
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// New creates a Transcriber for the configured backend.
func New(cfg Config) (service.Transcriber, error) {
	switch strings.ToLower(cfg.Backend) {
	case "whisper", "":
		return newWhisperTranscriber(cfg)
	case "deepgram":
		return newDeepgramTranscriber(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown transcription backend %q (supported: whisper, deepgram)",
			common.ErrInvalidConfig, cfg.Backend)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// statusError maps a backend HTTP status onto the transcription error taxonomy.
func statusError(backend model.TranscriptionBackend, status int, body []byte) error {
	var kind error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = common.ErrAuthFailure
	case http.StatusTooManyRequests:
		kind = common.ErrRateLimited
	case http.StatusRequestEntityTooLarge:
		kind = common.ErrPayloadTooLarge
	default:
		kind = common.ErrBackendProtocol
	}
	return fmt.Errorf("%w: %s API error (status %d): %s", kind, backend, status, string(body))
}

// emptyTranscript builds the error for an empty or whitespace-only result.
func emptyTranscript(backend model.TranscriptionBackend) error {
	return fmt.Errorf("%w: %s returned an empty transcript", common.ErrNoSpeech, backend)
}
