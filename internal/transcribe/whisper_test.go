package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
)

func TestWhisperTranscriber_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "ar", r.FormValue("language"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"text": "نص كيلو فراخ مشوي",
			"language": "arabic",
			"segments": [
				{"text": "نص كيلو فراخ مشوي", "avg_logprob": -0.15, "no_speech_prob": 0.02}
			]
		}`))
	}))
	defer server.Close()

	tr, err := newWhisperTranscriber(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := tr.Transcribe(context.Background(), model.Audio{Data: []byte("fake-audio")}, "ar")
	require.NoError(t, err)

	assert.Equal(t, "نص كيلو فراخ مشوي", got.Text)
	assert.Equal(t, model.BackendWhisper, got.Backend)
	require.True(t, got.HasConfidence())
	assert.InDelta(t, 0.84, *got.Confidence, 0.05)
}

func TestWhisperTranscriber_EmptyTextIsNoSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"text": "   ", "segments": []}`))
	}))
	defer server.Close()

	tr, err := newWhisperTranscriber(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), model.Audio{Data: []byte("x")}, "")
	assert.ErrorIs(t, err, common.ErrNoSpeech)
}

func TestWhisperTranscriber_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, common.ErrAuthFailure},
		{"rate limited", http.StatusTooManyRequests, common.ErrRateLimited},
		{"too large", http.StatusRequestEntityTooLarge, common.ErrPayloadTooLarge},
		{"bad gateway", http.StatusBadGateway, common.ErrBackendProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			tr, err := newWhisperTranscriber(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = tr.Transcribe(context.Background(), model.Audio{Data: []byte("x")}, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWhisperTranscriber_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	tr, err := newWhisperTranscriber(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), model.Audio{Data: []byte("x")}, "")
	assert.ErrorIs(t, err, common.ErrBackendProtocol)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "siri", APIKey: "k"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestWhisperTranscriber_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	tr, err := newWhisperTranscriber(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = tr.Transcribe(ctx, model.Audio{Data: []byte("x")}, "")
	assert.True(t, errors.Is(err, context.Canceled))
}
