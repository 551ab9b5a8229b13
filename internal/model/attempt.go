package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AttemptOutcome describes how one orchestrator run ended.
type AttemptOutcome string

// Attempt outcome constants.
const (
	OutcomeSucceeded         AttemptOutcome = "succeeded"
	OutcomeFallbackSucceeded AttemptOutcome = "fallback-succeeded"
	OutcomeFailed            AttemptOutcome = "failed"
)

// ExtractionAttempt tracks one run of the extraction orchestrator. It exists
// for diagnostics only and is never persisted.
type ExtractionAttempt struct {
	ID               string
	Strategy         StrategyName
	FallbackStrategy StrategyName
	StartedAt        time.Time
	EndedAt          time.Time
	Outcome          AttemptOutcome
	PrimaryError     string
	FallbackError    string
	ItemCount        int
}

// NewExtractionAttempt starts attempt bookkeeping for the given primary strategy.
func NewExtractionAttempt(strategy StrategyName) *ExtractionAttempt {
	return &ExtractionAttempt{
		ID:        uuid.NewString(),
		Strategy:  strategy,
		StartedAt: time.Now(),
	}
}

// Finish stamps the end time and outcome.
func (a *ExtractionAttempt) Finish(outcome AttemptOutcome, itemCount int) {
	a.EndedAt = time.Now()
	a.Outcome = outcome
	a.ItemCount = itemCount
}

// Duration reports how long the attempt ran.
func (a *ExtractionAttempt) Duration() time.Duration {
	if a.EndedAt.IsZero() {
		return time.Since(a.StartedAt)
	}
	return a.EndedAt.Sub(a.StartedAt)
}

// AttemptLog is an append-only record of extraction attempts. It outlives
// individual pipeline invocations and is safe for concurrent use.
type AttemptLog struct {
	mu       sync.Mutex
	attempts []ExtractionAttempt
}

// NewAttemptLog creates an empty attempt log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{}
}

// Append records a finished attempt.
func (l *AttemptLog) Append(attempt ExtractionAttempt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, attempt)
}

// All returns a copy of every recorded attempt, oldest first.
func (l *AttemptLog) All() []ExtractionAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ExtractionAttempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}

// Len reports the number of recorded attempts.
func (l *AttemptLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
