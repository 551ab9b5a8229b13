// Package common provides shared utilities and types used across the pipeline.
package common

import (
	"errors"
	"fmt"
)

// Common pipeline errors.
var (
	// Transcription errors.
	ErrNoSpeech        = errors.New("no speech detected")
	ErrAuthFailure     = errors.New("authentication failure")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrNetworkFailure  = errors.New("network failure")

	// Extraction errors.
	ErrBackendProtocol  = errors.New("backend protocol error")
	ErrValidationFailed = errors.New("validation failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Cause classifies a terminal failure by its likely root cause so the caller
// can show something more actionable than a raw backend exception.
type Cause string

// Failure causes, ordered by classification precedence.
const (
	CauseCredential   Cause = "credential"
	CauseQuota        Cause = "quota"
	CauseConnectivity Cause = "connectivity"
	CauseContent      Cause = "content"
)

// ClassifyCause inspects one or more errors and picks the most specific cause.
// Credential problems win over quota, quota over connectivity; anything that
// only failed at the understanding/parsing level is a content failure.
func ClassifyCause(errs ...error) Cause {
	cause := CauseContent
	for _, err := range errs {
		if err == nil {
			continue
		}
		switch {
		case errors.Is(err, ErrAuthFailure):
			return CauseCredential
		case errors.Is(err, ErrRateLimited):
			cause = CauseQuota
		case errors.Is(err, ErrNetworkFailure) && cause != CauseQuota:
			cause = CauseConnectivity
		}
	}
	return cause
}

// TerminalError wraps the primary and fallback failures of an extraction run
// into a single human-readable error classified by likely cause.
func TerminalError(primary, fallback error) error {
	joined := errors.Join(primary, fallback)
	switch ClassifyCause(primary, fallback) {
	case CauseCredential:
		return NewUserError("extraction failed: check your API credentials", joined)
	case CauseQuota:
		return NewUserError("extraction failed: backend quota exhausted, try again later", joined)
	case CauseConnectivity:
		return NewUserError("extraction failed: could not reach the inference backend", joined)
	default:
		return NewUserError("extraction failed: the backends could not understand this recording", joined)
	}
}
