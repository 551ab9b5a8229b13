// Package extract orchestrates the full pipeline from transcript to parsed
// food items, including strategy fallback.
package extract

import (
	"log/slog"

	"github.com/mealvoice/mealvoice/internal/llm"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/nutrition"
	"github.com/mealvoice/mealvoice/internal/quantity"
	"github.com/mealvoice/mealvoice/internal/service"
)

// Strategy is one complete way of turning transcript text into candidates
// and estimates. Strategies differ in cost and in how much confidence detail
// they report.
type Strategy interface {
	// Name identifies the strategy for provenance and attempt records.
	Name() model.StrategyName
	// Provider names the LLM backend the strategy calls.
	Provider() string
	// Detector returns the quantity detector for this strategy.
	Detector() service.QuantityDetector
	// Estimator returns the nutrition estimator for this strategy.
	Estimator() service.NutritionEstimator
}

type strategy struct {
	name      model.StrategyName
	provider  string
	detector  service.QuantityDetector
	estimator service.NutritionEstimator
}

func (s *strategy) Name() model.StrategyName              { return s.name }
func (s *strategy) Provider() string                      { return s.provider }
func (s *strategy) Detector() service.QuantityDetector    { return s.detector }
func (s *strategy) Estimator() service.NutritionEstimator { return s.estimator }

// NewBudgetStrategy uses the LLM only for detection and the compiled-in
// reference tables for nutrition. It reports no per-field confidences, so
// review decisions fall back to the lexicon heuristics.
func NewBudgetStrategy(client llm.Client, logger *slog.Logger, detectorOpts ...quantity.DetectorOption) Strategy {
	return &strategy{
		name:      model.StrategyBudget,
		provider:  client.Name(),
		detector:  quantity.NewDetector(client, logger, detectorOpts...),
		estimator: nutrition.NewTableEstimator(logger),
	}
}

// NewRichStrategy asks the LLM for per-field confidences during detection and
// uses it again for nutrition estimation, clamped by the plausibility bands.
// bands may be nil; the compiled-in category bands then apply everywhere.
func NewRichStrategy(client llm.Client, logger *slog.Logger, limiter *llm.RateLimiter, bands service.BandReference, detectorOpts ...quantity.DetectorOption) Strategy {
	opts := append([]quantity.DetectorOption{quantity.WithFieldConfidence()}, detectorOpts...)
	if limiter != nil {
		opts = append(opts, quantity.WithRateLimiter(limiter))
	}
	var estimatorOpts []nutrition.Option
	if bands != nil {
		estimatorOpts = append(estimatorOpts, nutrition.WithBandOverrides(bands))
	}
	return &strategy{
		name:      model.StrategyRich,
		provider:  client.Name(),
		detector:  quantity.NewDetector(client, logger, opts...),
		estimator: nutrition.NewLLMEstimator(client, logger, limiter, estimatorOpts...),
	}
}
