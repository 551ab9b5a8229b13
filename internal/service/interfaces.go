// Package service defines the interfaces shared across pipeline stages.
package service

import (
	"context"

	"github.com/mealvoice/mealvoice/internal/model"
)

// Transcriber converts a captured audio artifact into a raw transcript.
// Implementations must not retry internally; failures propagate to the caller.
type Transcriber interface {
	Transcribe(ctx context.Context, audio model.Audio, languageHint string) (model.RawTranscript, error)
}

// QuantityDetector extracts normalized food candidates from transcript text.
// An empty slice with a nil error means no food was mentioned; that is a
// valid terminal outcome, not a failure.
type QuantityDetector interface {
	DetectQuantities(ctx context.Context, text string) ([]model.FoodCandidate, error)
}

// NutritionEstimator computes one estimate per candidate, order-preserving
// and length-preserving. Empty input must return empty output without a
// backend call.
type NutritionEstimator interface {
	Estimate(ctx context.Context, candidates []model.FoodCandidate) ([]model.NutritionEstimate, error)
}

// ReviewEvaluator decides which fields of an extracted item need human review.
type ReviewEvaluator interface {
	Evaluate(candidate model.FoodCandidate, estimate model.NutritionEstimate) ReviewFlags
}

// ReviewFlags is the evaluator's verdict for one item.
type ReviewFlags struct {
	NeedsQuantityReview      bool
	NeedsCookingMethodReview bool
}

// PortionReference resolves typical portion weights and edible-yield factors
// for a food name or category. Implemented by the compiled-in tables and by
// the SQLite reference store.
type PortionReference interface {
	// TypicalPortionGrams returns the typical edible weight of one counted
	// unit of the named food, and whether the food is known.
	TypicalPortionGrams(name string) (float64, bool)
	// EdibleYield returns the gross-to-edible multiplier for whole or
	// bone-in mentions of the named food, and whether one is known.
	EdibleYield(name string) (float64, bool)
}

// BandReference resolves per-food calorie plausibility overrides, in kcal per
// 100g. Foods without an override use the compiled-in category bands.
type BandReference interface {
	CalorieBand(name string) (minCal100, maxCal100 float64, ok bool)
}

// AttemptSink receives finished extraction attempts for diagnostics.
// Implemented by model.AttemptLog.
type AttemptSink interface {
	Append(attempt model.ExtractionAttempt)
}
