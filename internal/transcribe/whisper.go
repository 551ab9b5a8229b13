package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
)

const defaultWhisperBaseURL = "https://api.openai.com"

// whisperTranscriber talks to an OpenAI-compatible audio transcription API.
type whisperTranscriber struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func newWhisperTranscriber(cfg Config) (*whisperTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: whisper API key is required", common.ErrMissingConfig)
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = "whisper-1"
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultWhisperBaseURL
	}

	return &whisperTranscriber{
		apiKey:     cfg.APIKey,
		model:      mdl,
		baseURL:    baseURL,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// whisperResponse is the verbose_json response shape.
type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text         string  `json:"text"`
		AvgLogprob   float64 `json:"avg_logprob"`
		NoSpeechProb float64 `json:"no_speech_prob"`
	} `json:"segments"`
}

// Transcribe uploads the audio artifact and returns the normalized transcript.
func (w *whisperTranscriber) Transcribe(ctx context.Context, audio model.Audio, languageHint string) (model.RawTranscript, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := audio.Filename
	if filename == "" {
		filename = "recording.m4a"
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return model.RawTranscript{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return model.RawTranscript{}, fmt.Errorf("failed to build upload: %w", err)
	}

	_ = writer.WriteField("model", w.model)
	_ = writer.WriteField("response_format", "verbose_json")
	if languageHint != "" {
		_ = writer.WriteField("language", languageHint)
	}
	if err := writer.Close(); err != nil {
		return model.RawTranscript{}, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return model.RawTranscript{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return model.RawTranscript{}, ctx.Err()
		}
		return model.RawTranscript{}, fmt.Errorf("%w: whisper request failed: %v", common.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RawTranscript{}, fmt.Errorf("%w: whisper response read failed: %v", common.ErrNetworkFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.RawTranscript{}, statusError(model.BackendWhisper, resp.StatusCode, body)
	}

	var response whisperResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.RawTranscript{}, fmt.Errorf("%w: malformed whisper response: %v", common.ErrBackendProtocol, err)
	}

	text := strings.TrimSpace(response.Text)
	if text == "" {
		return model.RawTranscript{}, emptyTranscript(model.BackendWhisper)
	}

	transcript := model.RawTranscript{
		Text:     text,
		Language: response.Language,
		Backend:  model.BackendWhisper,
		Duration: audio.Duration,
	}

	if conf, ok := whisperConfidence(response); ok {
		transcript.Confidence = &conf
	}

	return transcript, nil
}

// whisperConfidence derives an overall confidence from per-segment log
// probabilities. Whisper does not report a direct confidence, so the mean
// exp(avg_logprob) is used, discounted by the no-speech probability.
func whisperConfidence(r whisperResponse) (float64, bool) {
	if len(r.Segments) == 0 {
		return 0, false
	}

	var total float64
	for _, seg := range r.Segments {
		conf := math.Exp(seg.AvgLogprob) * (1 - seg.NoSpeechProb)
		total += clamp01(conf)
	}
	return clamp01(total / float64(len(r.Segments))), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
