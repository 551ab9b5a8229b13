// Package model defines the core domain models used throughout the pipeline.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TranscriptionBackend identifies which speech-inference backend produced a transcript.
type TranscriptionBackend string

// Supported transcription backends.
const (
	BackendWhisper  TranscriptionBackend = "whisper"
	BackendDeepgram TranscriptionBackend = "deepgram"
)

// Audio is a finite, already-captured audio artifact handed to the pipeline.
// Streaming input is not supported.
type Audio struct {
	Data     []byte
	Filename string
	MIMEType string
	Duration time.Duration
}

// TokenConfidence carries a per-token confidence signal when the backend reports one.
type TokenConfidence struct {
	Token      string
	Confidence float64
}

// RawTranscript is the immutable output of one transcription call.
// It is owned by the orchestrator for the duration of a single extraction
// attempt and discarded afterwards.
type RawTranscript struct {
	Text       string
	Language   string
	Backend    TranscriptionBackend
	Duration   time.Duration
	Confidence *float64
	Tokens     []TokenConfidence
}

// HasConfidence reports whether the backend supplied an overall confidence signal.
func (t RawTranscript) HasConfidence() bool {
	return t.Confidence != nil
}

// Hash returns a stable identity for the transcript text, for deduplicating
// repeated utterances.
func (t RawTranscript) Hash() string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(t.Text)))
	return hex.EncodeToString(sum[:])
}
