// Package review decides which fields of an extracted item a human should
// confirm before the item is trusted.
package review

import (
	"github.com/mealvoice/mealvoice/internal/lexicon"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

// DefaultThreshold is the per-field confidence below which a field is
// flagged for review.
const DefaultThreshold = 0.6

// Evaluator implements service.ReviewEvaluator. When the detection strategy
// reported per-field confidences, those decide directly against the
// threshold. Otherwise the lexicon heuristics take over.
type Evaluator struct {
	lex       *lexicon.Lexicon
	threshold float64
}

// NewEvaluator creates an evaluator with the given confidence threshold.
// A non-positive threshold falls back to the default.
func NewEvaluator(lex *lexicon.Lexicon, threshold float64) *Evaluator {
	if lex == nil {
		lex = lexicon.Default()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Evaluator{lex: lex, threshold: threshold}
}

// Evaluate returns the review flags for one item.
func (e *Evaluator) Evaluate(candidate model.FoodCandidate, estimate model.NutritionEstimate) service.ReviewFlags {
	return service.ReviewFlags{
		NeedsQuantityReview:      e.quantityReview(candidate, estimate),
		NeedsCookingMethodReview: e.methodReview(candidate),
	}
}

func (e *Evaluator) quantityReview(candidate model.FoodCandidate, estimate model.NutritionEstimate) bool {
	if candidate.QuantityConfidence != nil {
		return *candidate.QuantityConfidence < e.threshold
	}

	// A nutrition estimate that could not be made internally consistent
	// means the quantity cannot be trusted either.
	if estimate.Verdict == model.VerdictFailed {
		return true
	}
	return e.lex.HasVagueQuantity(candidate.SpokenPhrase)
}

func (e *Evaluator) methodReview(candidate model.FoodCandidate) bool {
	// Dairy, produce, beverages, and packaged foods have no cooking method
	// worth asking about.
	if e.lex.IsNoCookFood(candidate.Name) || e.lex.IsNoCookFood(candidate.SpokenPhrase) {
		return false
	}

	if candidate.MethodConfidence != nil {
		return *candidate.MethodConfidence < e.threshold
	}

	// Heuristic: an animal protein with no spoken cooking verb and no
	// detected method is probably missing its preparation.
	if candidate.Method != model.MethodUnknown {
		return false
	}
	if _, spoken := e.lex.MethodFromPhrase(candidate.SpokenPhrase); spoken {
		return false
	}
	return e.lex.IsRawProtein(candidate.Name) || e.lex.IsRawProtein(candidate.SpokenPhrase)
}
