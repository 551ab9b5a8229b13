package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealvoice/mealvoice/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluate_FieldConfidenceDecides(t *testing.T) {
	e := NewEvaluator(nil, 0.6)

	tests := []struct {
		name       string
		quantity   *float64
		method     *float64
		wantQty    bool
		wantMethod bool
	}{
		{"both high", ptr(0.9), ptr(0.8), false, false},
		{"quantity low", ptr(0.4), ptr(0.8), true, false},
		{"method low", ptr(0.9), ptr(0.3), false, true},
		{"both at threshold", ptr(0.6), ptr(0.6), false, false},
		{"both just under", ptr(0.59), ptr(0.59), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.FoodCandidate{
				Name:               "chicken",
				SpokenPhrase:       "chicken",
				WeightEstimate:     150,
				QuantityConfidence: tt.quantity,
				MethodConfidence:   tt.method,
			}
			flags := e.Evaluate(c, model.NutritionEstimate{Verdict: model.VerdictPassed})
			assert.Equal(t, tt.wantQty, flags.NeedsQuantityReview, "quantity")
			assert.Equal(t, tt.wantMethod, flags.NeedsCookingMethodReview, "method")
		})
	}
}

func TestEvaluate_VagueQuantityHeuristic(t *testing.T) {
	e := NewEvaluator(nil, 0)

	vague := model.FoodCandidate{Name: "rice", SpokenPhrase: "شوية رز", WeightEstimate: 200}
	flags := e.Evaluate(vague, model.NutritionEstimate{Verdict: model.VerdictPassed})
	assert.True(t, flags.NeedsQuantityReview)
	assert.False(t, flags.NeedsCookingMethodReview)

	precise := model.FoodCandidate{Name: "rice", SpokenPhrase: "200 grams of rice", WeightEstimate: 200}
	flags = e.Evaluate(precise, model.NutritionEstimate{Verdict: model.VerdictPassed})
	assert.False(t, flags.NeedsQuantityReview)
}

func TestEvaluate_RawProteinWithoutMethod(t *testing.T) {
	e := NewEvaluator(nil, 0)

	bare := model.FoodCandidate{
		Name:         "chicken",
		SpokenPhrase: "نص كيلو فراخ",
		Method:       model.MethodUnknown,
	}
	flags := e.Evaluate(bare, model.NutritionEstimate{Verdict: model.VerdictPassed})
	assert.True(t, flags.NeedsCookingMethodReview)

	grilled := bare
	grilled.SpokenPhrase = "نص كيلو فراخ مشوي"
	grilled.Method = model.MethodGrilled
	flags = e.Evaluate(grilled, model.NutritionEstimate{Verdict: model.VerdictPassed})
	assert.False(t, flags.NeedsCookingMethodReview)

	// A spoken cooking verb clears the flag even if detection kept unknown.
	spoken := bare
	spoken.SpokenPhrase = "فراخ مشوية"
	flags = e.Evaluate(spoken, model.NutritionEstimate{Verdict: model.VerdictPassed})
	assert.False(t, flags.NeedsCookingMethodReview)
}

func TestEvaluate_NoCookFoodsNeverFlagMethod(t *testing.T) {
	e := NewEvaluator(nil, 0)

	tests := []string{"milk", "banana smoothie with لبن", "orange juice", "salad"}
	for _, name := range tests {
		c := model.FoodCandidate{
			Name:             name,
			SpokenPhrase:     name,
			Method:           model.MethodUnknown,
			MethodConfidence: ptr(0.1),
		}
		flags := e.Evaluate(c, model.NutritionEstimate{Verdict: model.VerdictPassed})
		assert.False(t, flags.NeedsCookingMethodReview, name)
	}
}

func TestEvaluate_FailedConsistencyFlagsQuantity(t *testing.T) {
	e := NewEvaluator(nil, 0)

	c := model.FoodCandidate{Name: "rice", SpokenPhrase: "200 grams of rice", WeightEstimate: 200}
	flags := e.Evaluate(c, model.NutritionEstimate{Verdict: model.VerdictFailed})
	assert.True(t, flags.NeedsQuantityReview)
}

func TestEvaluate_NonProteinWithoutMethodNotFlagged(t *testing.T) {
	e := NewEvaluator(nil, 0)

	c := model.FoodCandidate{Name: "koshari", SpokenPhrase: "طبق كشري", Method: model.MethodUnknown}
	flags := e.Evaluate(c, model.NutritionEstimate{Verdict: model.VerdictPassed})
	assert.False(t, flags.NeedsCookingMethodReview)
}
