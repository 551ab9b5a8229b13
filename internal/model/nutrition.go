package model

import (
	"fmt"
	"math"
)

// ConsistencyVerdict records the outcome of the macro-consistency check.
type ConsistencyVerdict string

// Verdict constants.
const (
	VerdictPassed   ConsistencyVerdict = "passed"
	VerdictAdjusted ConsistencyVerdict = "adjusted"
	VerdictFailed   ConsistencyVerdict = "failed"
)

// DefaultMacroTolerance is the allowed relative deviation between reported
// calories and macro-derived calories before macros are rescaled.
const DefaultMacroTolerance = 0.10

// NutritionEstimate holds per-candidate macros and the quality verdict.
// All nutrient values are non-negative totals for the candidate's point
// estimate quantity, not per-100g figures.
type NutritionEstimate struct {
	Calories   float64
	Protein    float64
	Carbs      float64
	Fat        float64
	Verdict    ConsistencyVerdict
	Confidence float64
	Notes      []string
}

// MacroCalories derives calories from macros using the 4-4-9 rule.
func (e *NutritionEstimate) MacroCalories() float64 {
	return 4*e.Protein + 4*e.Carbs + 9*e.Fat
}

// ValidateAndAdjust enforces the 4-4-9 invariant. When the reported calories
// deviate from macro-derived calories beyond tolerance, macros are rescaled
// proportionally to match the calories and the verdict becomes adjusted.
// The operation is idempotent: re-validating an adjusted estimate is a no-op.
func (e *NutritionEstimate) ValidateAndAdjust(tolerance float64) error {
	if tolerance <= 0 {
		tolerance = DefaultMacroTolerance
	}
	if e.Calories < 0 || e.Protein < 0 || e.Carbs < 0 || e.Fat < 0 {
		e.Verdict = VerdictFailed
		return fmt.Errorf("negative nutrient values: cal=%.1f p=%.1f c=%.1f f=%.1f",
			e.Calories, e.Protein, e.Carbs, e.Fat)
	}

	macroCal := e.MacroCalories()

	// Zero-calorie items (plain water) are valid as long as macros agree.
	if e.Calories == 0 {
		if macroCal > 0 {
			e.Protein, e.Carbs, e.Fat = 0, 0, 0
			e.Verdict = VerdictAdjusted
			e.Notes = append(e.Notes, "macros zeroed to match zero calories")
			return nil
		}
		e.Verdict = VerdictPassed
		return nil
	}

	if macroCal == 0 {
		// Nothing to rescale; calories stand alone and the check cannot pass.
		e.Verdict = VerdictFailed
		return nil
	}

	deviation := math.Abs(e.Calories-macroCal) / e.Calories
	if deviation <= tolerance {
		if e.Verdict == "" {
			e.Verdict = VerdictPassed
		}
		return nil
	}

	scale := e.Calories / macroCal
	e.Protein *= scale
	e.Carbs *= scale
	e.Fat *= scale
	e.Verdict = VerdictAdjusted
	e.Notes = append(e.Notes, fmt.Sprintf("macros rescaled by %.2f to satisfy 4-4-9", scale))
	return nil
}

// ConsistencyDeviation returns the relative gap between calories and
// macro-derived calories. Zero-calorie estimates report zero deviation.
func (e *NutritionEstimate) ConsistencyDeviation() float64 {
	if e.Calories == 0 {
		return 0
	}
	return math.Abs(e.Calories-e.MacroCalories()) / e.Calories
}
