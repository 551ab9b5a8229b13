package model

// StrategyName identifies one complete quantity-detection + nutrition-estimation
// implementation.
type StrategyName string

// Known strategies.
const (
	StrategyBudget StrategyName = "budget"
	StrategyRich   StrategyName = "rich"
)

// Provenance records which strategy and backends produced a food item, for
// auditing and for diffing against later user edits.
type Provenance struct {
	Strategy      StrategyName
	LLMProvider   string
	Transcription TranscriptionBackend
}

// Quantity pairs the spoken form of an amount with its normalized-grams form.
type Quantity struct {
	SpokenAmount    float64
	SpokenUnit      string
	NormalizedGrams float64
}

// ParsedFoodItem is the final, user-facing record for one extracted food.
// Instances are created by the result assembler and mutated only by explicit
// user edits downstream, which must go through MarkUserEdited so the original
// AI estimate survives for diffing.
type ParsedFoodItem struct {
	Name                     string
	SpokenPhrase             string
	Quantity                 Quantity
	Method                   CookingMethod
	Calories                 float64
	Protein                  float64
	Carbs                    float64
	Fat                      float64
	Verdict                  ConsistencyVerdict
	OverallConfidence        float64
	NeedsQuantityReview      bool
	NeedsCookingMethodReview bool
	Assumptions              []string
	Provenance               Provenance

	UserModified bool
	Original     *ItemSnapshot
}

// ItemSnapshot preserves the AI-estimated values of an item before any user edit.
type ItemSnapshot struct {
	Name            string
	NormalizedGrams float64
	Method          CookingMethod
	Calories        float64
	Protein         float64
	Carbs           float64
	Fat             float64
}

// MarkUserEdited flags the item as user-modified, snapshotting the original
// AI estimate on first edit. Later edits keep the first snapshot.
func (p *ParsedFoodItem) MarkUserEdited() {
	if p.Original == nil {
		p.Original = &ItemSnapshot{
			Name:            p.Name,
			NormalizedGrams: p.Quantity.NormalizedGrams,
			Method:          p.Method,
			Calories:        p.Calories,
			Protein:         p.Protein,
			Carbs:           p.Carbs,
			Fat:             p.Fat,
		}
	}
	p.UserModified = true
}
