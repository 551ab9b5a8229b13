package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
)

const defaultDeepgramBaseURL = "https://api.deepgram.com"

// deepgramTranscriber talks to the Deepgram pre-recorded transcription API.
// Unlike whisper it reports word-level confidence, which downstream stages
// can use as the per-token signal.
type deepgramTranscriber struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func newDeepgramTranscriber(cfg Config) (*deepgramTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: deepgram API key is required", common.ErrMissingConfig)
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = "nova-2"
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultDeepgramBaseURL
	}

	return &deepgramTranscriber{
		apiKey:     cfg.APIKey,
		model:      mdl,
		baseURL:    baseURL,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// deepgramResponse is the subset of the pre-recorded response the pipeline uses.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []struct {
					Word       string  `json:"word"`
					Confidence float64 `json:"confidence"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe posts the audio bytes and returns the normalized transcript.
func (d *deepgramTranscriber) Transcribe(ctx context.Context, audio model.Audio, languageHint string) (model.RawTranscript, error) {
	endpoint, err := url.Parse(d.baseURL + "/v1/listen")
	if err != nil {
		return model.RawTranscript{}, fmt.Errorf("failed to build request URL: %w", err)
	}

	q := endpoint.Query()
	q.Set("model", d.model)
	q.Set("punctuate", "true")
	if languageHint != "" {
		q.Set("language", languageHint)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(audio.Data))
	if err != nil {
		return model.RawTranscript{}, fmt.Errorf("failed to create request: %w", err)
	}

	mime := audio.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mime)
	req.Header.Set("Authorization", "Token "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return model.RawTranscript{}, ctx.Err()
		}
		return model.RawTranscript{}, fmt.Errorf("%w: deepgram request failed: %v", common.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RawTranscript{}, fmt.Errorf("%w: deepgram response read failed: %v", common.ErrNetworkFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.RawTranscript{}, statusError(model.BackendDeepgram, resp.StatusCode, body)
	}

	var response deepgramResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.RawTranscript{}, fmt.Errorf("%w: malformed deepgram response: %v", common.ErrBackendProtocol, err)
	}

	if len(response.Results.Channels) == 0 || len(response.Results.Channels[0].Alternatives) == 0 {
		return model.RawTranscript{}, fmt.Errorf("%w: deepgram response has no alternatives", common.ErrBackendProtocol)
	}

	alt := response.Results.Channels[0].Alternatives[0]
	text := strings.TrimSpace(alt.Transcript)
	if text == "" {
		return model.RawTranscript{}, emptyTranscript(model.BackendDeepgram)
	}

	confidence := clamp01(alt.Confidence)
	transcript := model.RawTranscript{
		Text:       text,
		Language:   languageHint,
		Backend:    model.BackendDeepgram,
		Duration:   audio.Duration,
		Confidence: &confidence,
	}

	for _, w := range alt.Words {
		transcript.Tokens = append(transcript.Tokens, model.TokenConfidence{
			Token:      w.Word,
			Confidence: clamp01(w.Confidence),
		})
	}

	return transcript, nil
}
