package extract

import (
	"log/slog"

	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

// ConfidenceAggregator folds a candidate's detection confidence and its
// estimate's nutrition confidence into one overall score.
type ConfidenceAggregator func(candidate model.FoodCandidate, estimate model.NutritionEstimate) float64

// MeanConfidence is the default aggregator: the arithmetic mean of detection
// and nutrition confidence.
func MeanConfidence(candidate model.FoodCandidate, estimate model.NutritionEstimate) float64 {
	return (candidate.Confidence + estimate.Confidence) / 2
}

// Assembler merges candidates, estimates, and review flags into the final
// parsed food items.
type Assembler struct {
	evaluator service.ReviewEvaluator
	aggregate ConfidenceAggregator
	logger    *slog.Logger
}

// NewAssembler creates an assembler. A nil aggregator uses MeanConfidence.
func NewAssembler(evaluator service.ReviewEvaluator, aggregate ConfidenceAggregator, logger *slog.Logger) *Assembler {
	if aggregate == nil {
		aggregate = MeanConfidence
	}
	return &Assembler{evaluator: evaluator, aggregate: aggregate, logger: logger}
}

// Assemble pairs candidates with estimates by position. Unpaired entries at
// the tail are dropped with a warning rather than guessed at.
func (a *Assembler) Assemble(candidates []model.FoodCandidate, estimates []model.NutritionEstimate, prov model.Provenance) []model.ParsedFoodItem {
	n := len(candidates)
	if len(estimates) != n {
		a.logger.Warn("estimate count does not match candidate count, dropping unpaired tail",
			"candidates", len(candidates),
			"estimates", len(estimates))
		if len(estimates) < n {
			n = len(estimates)
		}
	}

	items := make([]model.ParsedFoodItem, 0, n)
	for i := 0; i < n; i++ {
		c, e := candidates[i], estimates[i]
		flags := a.evaluator.Evaluate(c, e)

		items = append(items, model.ParsedFoodItem{
			Name:         c.Name,
			SpokenPhrase: c.SpokenPhrase,
			Quantity: model.Quantity{
				SpokenAmount:    c.SpokenQuantity,
				SpokenUnit:      c.SpokenUnit,
				NormalizedGrams: c.WeightEstimate,
			},
			Method:                   c.Method,
			Calories:                 e.Calories,
			Protein:                  e.Protein,
			Carbs:                    e.Carbs,
			Fat:                      e.Fat,
			Verdict:                  e.Verdict,
			OverallConfidence:        a.aggregate(c, e),
			NeedsQuantityReview:      flags.NeedsQuantityReview,
			NeedsCookingMethodReview: flags.NeedsCookingMethodReview,
			Assumptions:              append([]string(nil), c.Assumptions...),
			Provenance:               prov,
		})
	}
	return items
}
