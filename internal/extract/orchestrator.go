package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

// State is the orchestrator's position in one extraction run.
type State string

// Orchestrator states. A run moves Idle -> RunningPrimary, then either to
// Succeeded or through RunningFallback to Succeeded or Failed. The fallback
// runs at most once; there is no retry loop anywhere.
const (
	StateIdle            State = "idle"
	StateRunningPrimary  State = "running-primary"
	StateRunningFallback State = "running-fallback"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

const defaultStageTimeout = 45 * time.Second

// StrategyResult is what one successful strategy run produced.
type StrategyResult struct {
	Strategy   Strategy
	Candidates []model.FoodCandidate
	Estimates  []model.NutritionEstimate
}

// Orchestrator runs the primary strategy and falls back to the secondary
// exactly once on failure. User cancellation never triggers the fallback.
type Orchestrator struct {
	primary      Strategy
	fallback     Strategy
	stageTimeout time.Duration
	logger       *slog.Logger
	attempts     service.AttemptSink
}

// NewOrchestrator wires the two strategies. fallback may be nil, in which
// case a primary failure is terminal immediately.
func NewOrchestrator(primary, fallback Strategy, attempts service.AttemptSink, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		primary:      primary,
		fallback:     fallback,
		stageTimeout: defaultStageTimeout,
		logger:       logger,
		attempts:     attempts,
	}
}

// SetStageTimeout overrides the per-stage deadline for detection and
// estimation.
func (o *Orchestrator) SetStageTimeout(d time.Duration) {
	if d > 0 {
		o.stageTimeout = d
	}
}

// Run extracts candidates and estimates from transcript text. An empty
// candidate list with a nil error is a successful run: the transcript simply
// mentioned no food.
func (o *Orchestrator) Run(ctx context.Context, text string) (StrategyResult, error) {
	attempt := model.NewExtractionAttempt(o.primary.Name())
	state := StateIdle

	state = o.transition(state, StateRunningPrimary, attempt.ID)
	result, primaryErr := o.runStrategy(ctx, o.primary, text)
	if primaryErr == nil {
		o.transition(state, StateSucceeded, attempt.ID)
		attempt.Finish(model.OutcomeSucceeded, len(result.Candidates))
		o.record(*attempt)
		return result, nil
	}
	attempt.PrimaryError = primaryErr.Error()

	if errors.Is(primaryErr, context.Canceled) {
		o.transition(state, StateFailed, attempt.ID)
		attempt.Finish(model.OutcomeFailed, 0)
		o.record(*attempt)
		return StrategyResult{}, primaryErr
	}

	if o.fallback == nil {
		o.transition(state, StateFailed, attempt.ID)
		attempt.Finish(model.OutcomeFailed, 0)
		o.record(*attempt)
		return StrategyResult{}, common.TerminalError(primaryErr, nil)
	}

	o.logger.Warn("primary strategy failed, falling back",
		"primary", o.primary.Name(),
		"fallback", o.fallback.Name(),
		"error", primaryErr)

	attempt.FallbackStrategy = o.fallback.Name()
	state = o.transition(state, StateRunningFallback, attempt.ID)
	result, fallbackErr := o.runStrategy(ctx, o.fallback, text)
	if fallbackErr == nil {
		o.transition(state, StateSucceeded, attempt.ID)
		attempt.Finish(model.OutcomeFallbackSucceeded, len(result.Candidates))
		o.record(*attempt)
		return result, nil
	}
	attempt.FallbackError = fallbackErr.Error()

	o.transition(state, StateFailed, attempt.ID)
	attempt.Finish(model.OutcomeFailed, 0)
	o.record(*attempt)

	// No partial results survive a double failure.
	return StrategyResult{}, common.TerminalError(primaryErr, fallbackErr)
}

// runStrategy executes detection and estimation under per-stage deadlines.
func (o *Orchestrator) runStrategy(ctx context.Context, s Strategy, text string) (StrategyResult, error) {
	detectCtx, cancelDetect := context.WithTimeout(ctx, o.stageTimeout)
	defer cancelDetect()

	candidates, err := s.Detector().DetectQuantities(detectCtx, text)
	if err != nil {
		return StrategyResult{}, fmt.Errorf("strategy %s: %w", s.Name(), err)
	}

	if len(candidates) == 0 {
		return StrategyResult{
			Strategy:   s,
			Candidates: []model.FoodCandidate{},
			Estimates:  []model.NutritionEstimate{},
		}, nil
	}

	estimateCtx, cancelEstimate := context.WithTimeout(ctx, o.stageTimeout)
	defer cancelEstimate()

	estimates, err := s.Estimator().Estimate(estimateCtx, candidates)
	if err != nil {
		return StrategyResult{}, fmt.Errorf("strategy %s: %w", s.Name(), err)
	}

	return StrategyResult{Strategy: s, Candidates: candidates, Estimates: estimates}, nil
}

func (o *Orchestrator) transition(from, to State, attemptID string) State {
	o.logger.Debug("orchestrator state change",
		"attempt", attemptID,
		"from", from,
		"to", to)
	return to
}

func (o *Orchestrator) record(attempt model.ExtractionAttempt) {
	if o.attempts != nil {
		o.attempts.Append(attempt)
	}
}
