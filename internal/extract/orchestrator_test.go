package extract

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

type stubDetector struct {
	candidates []model.FoodCandidate
	err        error
	calls      int
}

func (s *stubDetector) DetectQuantities(ctx context.Context, _ string) ([]model.FoodCandidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.candidates, nil
}

type stubEstimator struct {
	estimates []model.NutritionEstimate
	err       error
	calls     int
}

func (s *stubEstimator) Estimate(_ context.Context, _ []model.FoodCandidate) ([]model.NutritionEstimate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.estimates, nil
}

type stubStrategy struct {
	name model.StrategyName
	det  *stubDetector
	est  *stubEstimator
}

func (s *stubStrategy) Name() model.StrategyName              { return s.name }
func (s *stubStrategy) Provider() string                      { return "stub-provider" }
func (s *stubStrategy) Detector() service.QuantityDetector    { return s.det }
func (s *stubStrategy) Estimator() service.NutritionEstimator { return s.est }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chickenCandidate() model.FoodCandidate {
	return model.FoodCandidate{
		Name:           "grilled chicken",
		SpokenPhrase:   "نص كيلو فراخ مشوي",
		Kind:           model.KindSolid,
		Method:         model.MethodGrilled,
		WeightLow:      450,
		WeightEstimate: 500,
		WeightHigh:     550,
		Confidence:     0.9,
	}
}

func chickenEstimate() model.NutritionEstimate {
	return model.NutritionEstimate{
		Calories:   825,
		Protein:    155,
		Fat:        18,
		Verdict:    model.VerdictPassed,
		Confidence: 0.8,
	}
}

func TestOrchestrator_PrimarySucceeds(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{candidates: []model.FoodCandidate{chickenCandidate()}},
		est:  &stubEstimator{estimates: []model.NutritionEstimate{chickenEstimate()}},
	}
	fallback := &stubStrategy{name: model.StrategyBudget, det: &stubDetector{}, est: &stubEstimator{}}
	log := model.NewAttemptLog()
	o := NewOrchestrator(primary, fallback, log, testLogger())

	got, err := o.Run(context.Background(), "text")
	require.NoError(t, err)

	assert.Len(t, got.Candidates, 1)
	assert.Equal(t, model.StrategyRich, got.Strategy.Name())
	assert.Zero(t, fallback.det.calls)

	require.Equal(t, 1, log.Len())
	attempt := log.All()[0]
	assert.Equal(t, model.OutcomeSucceeded, attempt.Outcome)
	assert.Equal(t, 1, attempt.ItemCount)
	assert.NotEmpty(t, attempt.ID)
}

func TestOrchestrator_FallbackRunsExactlyOnce(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{err: common.ErrNetworkFailure},
		est:  &stubEstimator{},
	}
	fallback := &stubStrategy{
		name: model.StrategyBudget,
		det:  &stubDetector{candidates: []model.FoodCandidate{chickenCandidate()}},
		est:  &stubEstimator{estimates: []model.NutritionEstimate{chickenEstimate()}},
	}
	log := model.NewAttemptLog()
	o := NewOrchestrator(primary, fallback, log, testLogger())

	got, err := o.Run(context.Background(), "text")
	require.NoError(t, err)

	assert.Equal(t, model.StrategyBudget, got.Strategy.Name())
	assert.Equal(t, 1, primary.det.calls)
	assert.Equal(t, 1, fallback.det.calls)

	attempt := log.All()[0]
	assert.Equal(t, model.OutcomeFallbackSucceeded, attempt.Outcome)
	assert.Equal(t, model.StrategyBudget, attempt.FallbackStrategy)
	assert.NotEmpty(t, attempt.PrimaryError)
	assert.Empty(t, attempt.FallbackError)
}

func TestOrchestrator_BothFailIsTerminal(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{err: common.ErrNetworkFailure},
		est:  &stubEstimator{},
	}
	fallback := &stubStrategy{
		name: model.StrategyBudget,
		det:  &stubDetector{err: common.ErrNetworkFailure},
		est:  &stubEstimator{},
	}
	log := model.NewAttemptLog()
	o := NewOrchestrator(primary, fallback, log, testLogger())

	got, err := o.Run(context.Background(), "text")
	require.Error(t, err)

	// No partial results on a double failure.
	assert.Empty(t, got.Candidates)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "could not reach")

	assert.Equal(t, 1, primary.det.calls)
	assert.Equal(t, 1, fallback.det.calls)

	attempt := log.All()[0]
	assert.Equal(t, model.OutcomeFailed, attempt.Outcome)
	assert.NotEmpty(t, attempt.PrimaryError)
	assert.NotEmpty(t, attempt.FallbackError)
}

func TestOrchestrator_CredentialFailureClassified(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{err: common.ErrAuthFailure},
		est:  &stubEstimator{},
	}
	fallback := &stubStrategy{
		name: model.StrategyBudget,
		det:  &stubDetector{err: common.ErrNetworkFailure},
		est:  &stubEstimator{},
	}
	o := NewOrchestrator(primary, fallback, model.NewAttemptLog(), testLogger())

	_, err := o.Run(context.Background(), "text")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "credentials")
}

func TestOrchestrator_CancellationSkipsFallback(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{candidates: []model.FoodCandidate{chickenCandidate()}},
		est:  &stubEstimator{},
	}
	fallback := &stubStrategy{name: model.StrategyBudget, det: &stubDetector{}, est: &stubEstimator{}}
	o := NewOrchestrator(primary, fallback, model.NewAttemptLog(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, "text")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.det.calls)
}

func TestOrchestrator_NoFoodIsSuccess(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{candidates: []model.FoodCandidate{}},
		est:  &stubEstimator{},
	}
	fallback := &stubStrategy{name: model.StrategyBudget, det: &stubDetector{}, est: &stubEstimator{}}
	log := model.NewAttemptLog()
	o := NewOrchestrator(primary, fallback, log, testLogger())

	got, err := o.Run(context.Background(), "it is raining today")
	require.NoError(t, err)

	assert.NotNil(t, got.Candidates)
	assert.Empty(t, got.Candidates)
	assert.Zero(t, primary.est.calls, "estimation must be skipped for empty detection")
	assert.Zero(t, fallback.det.calls)
	assert.Equal(t, model.OutcomeSucceeded, log.All()[0].Outcome)
}

func TestOrchestrator_EstimationFailureTriggersFallback(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyRich,
		det:  &stubDetector{candidates: []model.FoodCandidate{chickenCandidate()}},
		est:  &stubEstimator{err: common.ErrBackendProtocol},
	}
	fallback := &stubStrategy{
		name: model.StrategyBudget,
		det:  &stubDetector{candidates: []model.FoodCandidate{chickenCandidate()}},
		est:  &stubEstimator{estimates: []model.NutritionEstimate{chickenEstimate()}},
	}
	o := NewOrchestrator(primary, fallback, model.NewAttemptLog(), testLogger())

	got, err := o.Run(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, model.StrategyBudget, got.Strategy.Name())
	assert.Equal(t, 1, primary.est.calls)
}

func TestOrchestrator_NilFallbackFailsImmediately(t *testing.T) {
	primary := &stubStrategy{
		name: model.StrategyBudget,
		det:  &stubDetector{err: common.ErrRateLimited},
		est:  &stubEstimator{},
	}
	o := NewOrchestrator(primary, nil, model.NewAttemptLog(), testLogger())

	_, err := o.Run(context.Background(), "text")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "quota")
}
