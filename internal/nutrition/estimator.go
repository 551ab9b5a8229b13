// Package nutrition computes calorie and macronutrient estimates for
// normalized food candidates.
//
// Two sources exist: a compiled-in reference table that needs no backend, and
// an LLM source that asks the backend and then clamps the answer into the
// category's plausibility band. Both feed the same consistency check, so an
// estimate that leaves this package always satisfies the 4-4-9 rule within
// tolerance or carries an adjusted/failed verdict saying why.
package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/llm"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/payload"
	"github.com/mealvoice/mealvoice/internal/service"
)

const (
	tableConfidenceKnown    = 0.7
	tableConfidenceFallback = 0.4
)

type source interface {
	estimate(ctx context.Context, candidates []model.FoodCandidate) ([]model.NutritionEstimate, error)
}

// Estimator implements service.NutritionEstimator over a pluggable source.
type Estimator struct {
	src    source
	logger *slog.Logger
}

// NewTableEstimator builds an estimator that uses only the compiled-in
// reference tables. No backend calls are made.
func NewTableEstimator(logger *slog.Logger) *Estimator {
	return &Estimator{src: &tableSource{}, logger: logger}
}

// Option customizes an estimator.
type Option func(*Estimator)

// WithBandOverrides consults the given reference before the compiled-in
// category bands when clamping backend answers.
func WithBandOverrides(ref service.BandReference) Option {
	return func(e *Estimator) {
		if src, ok := e.src.(*llmSource); ok {
			src.bands = ref
		}
	}
}

// NewLLMEstimator builds an estimator that asks the given backend and clamps
// its answers into the local plausibility bands.
func NewLLMEstimator(client llm.Client, logger *slog.Logger, limiter *llm.RateLimiter, opts ...Option) *Estimator {
	e := &Estimator{
		src:    &llmSource{client: client, limiter: limiter},
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns exactly one estimate per candidate, in order. Empty input
// returns empty output without touching the source.
func (e *Estimator) Estimate(ctx context.Context, candidates []model.FoodCandidate) ([]model.NutritionEstimate, error) {
	if len(candidates) == 0 {
		return []model.NutritionEstimate{}, nil
	}

	estimates, err := e.src.estimate(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(estimates) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d estimates for %d candidates",
			common.ErrBackendProtocol, len(estimates), len(candidates))
	}

	for i := range estimates {
		if err := estimates[i].ValidateAndAdjust(model.DefaultMacroTolerance); err != nil {
			return nil, fmt.Errorf("%w: implausible nutrition for %s: %v",
				common.ErrBackendProtocol, candidates[i].Name, err)
		}
		if estimates[i].Verdict == model.VerdictAdjusted {
			e.logger.Debug("macros adjusted to match calories", "food", candidates[i].Name)
		}
	}
	return estimates, nil
}

// tableSource scales per-100g reference profiles by the candidate weight.
type tableSource struct{}

func (t *tableSource) estimate(_ context.Context, candidates []model.FoodCandidate) ([]model.NutritionEstimate, error) {
	estimates := make([]model.NutritionEstimate, len(candidates))
	for i, c := range candidates {
		profile, known := profileFor(c)
		base := applyMethod(profile.baseline, c.Method)
		factor := c.WeightEstimate / 100

		est := model.NutritionEstimate{
			Calories:   base.calories * factor,
			Protein:    base.protein * factor,
			Carbs:      base.carbs * factor,
			Fat:        base.fat * factor,
			Confidence: tableConfidenceKnown,
		}
		if !known {
			est.Confidence = tableConfidenceFallback
			est.Notes = append(est.Notes, "food not in reference table, used category baseline")
		}
		if _, scaled := methodMultipliers[c.Method]; scaled {
			est.Notes = append(est.Notes, fmt.Sprintf("adjusted for %s preparation", c.Method))
		}
		estimates[i] = est
	}
	return estimates, nil
}

// llmSource asks the backend for macros and clamps each answer into the
// category band.
type llmSource struct {
	client  llm.Client
	limiter *llm.RateLimiter
	bands   service.BandReference
}

// llmEstimate is one element of the backend's response array.
type llmEstimate struct {
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein_g"`
	Carbs      float64 `json:"carbs_g"`
	Fat        float64 `json:"fat_g"`
	Confidence float64 `json:"confidence"`
	Quality    struct {
		Plausible bool   `json:"plausible"`
		Notes     string `json:"notes"`
	} `json:"quality"`
}

func (l *llmSource) estimate(ctx context.Context, candidates []model.FoodCandidate) ([]model.NutritionEstimate, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	response, err := l.client.Complete(ctx, llm.Request{
		System:      estimationSystemPrompt,
		Prompt:      buildEstimationPrompt(candidates),
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("nutrition estimation failed: %w", err)
	}

	arrayJSON, err := payload.ExtractArray(response)
	if err != nil {
		return nil, fmt.Errorf("nutrition estimation returned no parsable array: %w", err)
	}

	var raw []llmEstimate
	if err := json.Unmarshal([]byte(arrayJSON), &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode estimate array: %v", common.ErrBackendProtocol, err)
	}
	if len(raw) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d estimates for %d candidates",
			common.ErrBackendProtocol, len(raw), len(candidates))
	}

	estimates := make([]model.NutritionEstimate, len(candidates))
	for i, r := range raw {
		est := model.NutritionEstimate{
			Calories:   r.Calories,
			Protein:    r.Protein,
			Carbs:      r.Carbs,
			Fat:        r.Fat,
			Confidence: clampUnit(r.Confidence),
		}
		if r.Quality.Notes != "" {
			est.Notes = append(est.Notes, r.Quality.Notes)
		}
		if !r.Quality.Plausible {
			est.Notes = append(est.Notes, "backend flagged its own estimate as uncertain")
		}
		l.clampEstimate(&est, candidates[i])
		estimates[i] = est
	}
	return estimates, nil
}

// clampEstimate pins an estimate into the food's plausibility band, scaling
// the macros by the same factor so the 4-4-9 relationship survives.
func (l *llmSource) clampEstimate(est *model.NutritionEstimate, candidate model.FoodCandidate) {
	if candidate.WeightEstimate <= 0 || est.Calories < 0 {
		return
	}
	b := bandFor(candidate, l.bands)
	cal100 := est.Calories / (candidate.WeightEstimate / 100)
	clamped, changed := clampToBand(cal100, b)
	if !changed {
		return
	}

	target := clamped * candidate.WeightEstimate / 100
	if est.Calories > 0 {
		factor := target / est.Calories
		est.Protein *= factor
		est.Carbs *= factor
		est.Fat *= factor
	}
	est.Calories = target
	est.Notes = append(est.Notes, fmt.Sprintf(
		"estimate outside plausible range for %s, clamped to %.0f kcal", candidate.Name, target))
}

func buildEstimationPrompt(candidates []model.FoodCandidate) string {
	var sb strings.Builder
	sb.WriteString("Estimate the nutrition for each of these foods:\n\n")
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("%d. %s, %.0fg edible weight", i+1, c.Name, c.WeightEstimate))
		if c.Method != model.MethodUnknown {
			sb.WriteString(fmt.Sprintf(", %s", c.Method))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nRespond with a JSON array of exactly ")
	sb.WriteString(fmt.Sprintf("%d", len(candidates)))
	sb.WriteString(" elements, in the same order. Each element:\n")
	sb.WriteString(`{"calories": number, "protein_g": number, "carbs_g": number, "fat_g": number, ` +
		`"confidence": 0.0-1.0, "quality": {"plausible": bool, "notes": "short caveat or empty"}}` + "\n")
	sb.WriteString("Calories must be consistent with the macros (4 kcal/g protein and carbs, 9 kcal/g fat).")
	return sb.String()
}

const estimationSystemPrompt = `You are a nutrition database. Given foods with edible weights and cooking methods, you return calorie and macronutrient estimates as JSON. You account for cooking method (frying adds absorbed oil). You answer with a JSON array only, one element per food, in the order given.`

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
