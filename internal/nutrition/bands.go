package nutrition

import (
	"strings"

	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

// macros100 holds nutrition per 100g of edible food.
type macros100 struct {
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

// band is the plausible calories-per-100g window for a food category.
// Backend-sourced estimates outside the band are clamped to its edge.
type band struct {
	minCal100 float64
	maxCal100 float64
}

type foodProfile struct {
	key      string
	baseline macros100
	band     band
}

// profiles is matched by substring against the lowercased food name, most
// specific keys first. Values are rounded reference figures, not lab data;
// the bands are deliberately wide.
var profiles = []foodProfile{
	{"water", macros100{0, 0, 0, 0}, band{0, 5}},
	{"مياه", macros100{0, 0, 0, 0}, band{0, 5}},
	{"diet soda", macros100{1, 0, 0, 0}, band{0, 5}},
	{"black coffee", macros100{2, 0.2, 0, 0}, band{0, 10}},
	{"tea", macros100{1, 0, 0.2, 0}, band{0, 40}},
	{"شاي", macros100{1, 0, 0.2, 0}, band{0, 40}},
	{"juice", macros100{45, 0.5, 10.5, 0.1}, band{20, 70}},
	{"عصير", macros100{45, 0.5, 10.5, 0.1}, band{20, 70}},
	{"soda", macros100{42, 0, 10.5, 0}, band{30, 55}},
	{"cola", macros100{42, 0, 10.5, 0}, band{30, 55}},
	{"milk", macros100{62, 3.2, 4.8, 3.3}, band{30, 90}},
	{"لبن", macros100{62, 3.2, 4.8, 3.3}, band{30, 90}},
	{"yogurt", macros100{61, 3.5, 4.7, 3.3}, band{40, 120}},
	{"زبادي", macros100{61, 3.5, 4.7, 3.3}, band{40, 120}},
	{"cheese", macros100{300, 20, 2, 24}, band{200, 450}},
	{"جبنة", macros100{300, 20, 2, 24}, band{200, 450}},
	{"egg", macros100{155, 13, 1.1, 11}, band{120, 200}},
	{"بيض", macros100{155, 13, 1.1, 11}, band{120, 200}},
	{"chicken", macros100{165, 31, 0, 3.6}, band{100, 320}},
	{"فراخ", macros100{165, 31, 0, 3.6}, band{100, 320}},
	{"beef", macros100{250, 26, 0, 15}, band{150, 400}},
	{"لحمة", macros100{250, 26, 0, 15}, band{150, 400}},
	{"kofta", macros100{250, 17, 4, 18}, band{180, 380}},
	{"كفتة", macros100{250, 17, 4, 18}, band{180, 380}},
	{"fish", macros100{130, 26, 0, 3}, band{80, 280}},
	{"سمك", macros100{130, 26, 0, 3}, band{80, 280}},
	{"shrimp", macros100{99, 24, 0.2, 0.3}, band{70, 250}},
	{"جمبري", macros100{99, 24, 0.2, 0.3}, band{70, 250}},
	{"rice", macros100{130, 2.7, 28, 0.3}, band{90, 220}},
	{"رز", macros100{130, 2.7, 28, 0.3}, band{90, 220}},
	{"pasta", macros100{131, 5, 25, 1.1}, band{90, 220}},
	{"مكرونة", macros100{131, 5, 25, 1.1}, band{90, 220}},
	{"koshari", macros100{160, 5, 30, 2.5}, band{120, 250}},
	{"كشري", macros100{160, 5, 30, 2.5}, band{120, 250}},
	{"bread", macros100{265, 9, 49, 3.2}, band{200, 350}},
	{"عيش", macros100{265, 9, 49, 3.2}, band{200, 350}},
	{"pita", macros100{275, 9, 55, 1.2}, band{200, 350}},
	{"falafel", macros100{333, 13, 32, 18}, band{250, 450}},
	{"طعمية", macros100{333, 13, 32, 18}, band{250, 450}},
	{"potato", macros100{87, 2, 20, 0.1}, band{60, 350}},
	{"بطاطس", macros100{87, 2, 20, 0.1}, band{60, 350}},
	{"salad", macros100{35, 1.5, 5, 1}, band{10, 150}},
	{"سلطة", macros100{35, 1.5, 5, 1}, band{10, 150}},
	{"banana", macros100{89, 1.1, 23, 0.3}, band{60, 120}},
	{"موز", macros100{89, 1.1, 23, 0.3}, band{60, 120}},
	{"apple", macros100{52, 0.3, 14, 0.2}, band{30, 80}},
	{"تفاح", macros100{52, 0.3, 14, 0.2}, band{30, 80}},
	{"date", macros100{282, 2.5, 75, 0.4}, band{220, 330}},
	{"بلح", macros100{282, 2.5, 75, 0.4}, band{220, 330}},
	{"chocolate", macros100{546, 5, 60, 31}, band{400, 650}},
	{"شوكولاتة", macros100{546, 5, 60, 31}, band{400, 650}},
	{"pizza", macros100{266, 11, 33, 10}, band{200, 380}},
	{"burger", macros100{254, 13, 24, 12}, band{180, 380}},
	{"soup", macros100{45, 2.5, 5, 1.5}, band{15, 120}},
	{"شوربة", macros100{45, 2.5, 5, 1.5}, band{15, 120}},
}

// kindFallbacks cover foods the profile table does not know, keyed by the
// candidate's alimentary kind.
var kindFallbacks = map[model.AlimentaryKind]foodProfile{
	model.KindSolid:    {"", macros100{180, 8, 20, 7}, band{40, 600}},
	model.KindLiquid:   {"", macros100{40, 1, 8, 0.5}, band{0, 150}},
	model.KindBeverage: {"", macros100{60, 1.5, 10, 1.5}, band{0, 200}},
	model.KindSoup:     {"", macros100{45, 2.5, 5, 1.5}, band{10, 150}},
	model.KindSauce:    {"", macros100{120, 2, 10, 8}, band{20, 500}},
}

// methodMultipliers adjust calories and fat for the preparation. Frying adds
// absorbed oil; baking renders a little fat out. Grilled, boiled, and raw
// leave the baseline untouched.
var methodMultipliers = map[model.CookingMethod]struct {
	calories float64
	fat      float64
}{
	model.MethodFried: {1.35, 1.9},
	model.MethodBaked: {0.95, 0.9},
}

// profileFor resolves the reference profile for a candidate. The second
// return reports whether the food name itself was recognized.
func profileFor(candidate model.FoodCandidate) (foodProfile, bool) {
	lower := strings.ToLower(candidate.Name)
	for _, p := range profiles {
		if matchFood(lower, p.key) {
			return p, true
		}
	}
	if fb, ok := kindFallbacks[candidate.Kind]; ok {
		return fb, false
	}
	return kindFallbacks[model.KindSolid], false
}

// matchFood matches a table key on word boundaries, tolerating a plural "s",
// so "tea" does not match "steak" but "egg" still matches "eggs". Arabic keys
// match as plain substrings; their inflections are suffixes that word
// boundaries would reject.
func matchFood(text, key string) bool {
	if !isASCII(key) {
		return strings.Contains(text, key)
	}
	idx := strings.Index(text, key)
	for idx >= 0 {
		before := idx == 0 || text[idx-1] == ' '
		afterIdx := idx + len(key)
		after := afterIdx == len(text) || text[afterIdx] == ' ' ||
			(text[afterIdx] == 's' && (afterIdx+1 == len(text) || text[afterIdx+1] == ' '))
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], key)
		if next < 0 {
			break
		}
		idx += 1 + next
	}
	return false
}

// applyMethod scales a per-100g baseline for the candidate's cooking method.
func applyMethod(base macros100, method model.CookingMethod) macros100 {
	mult, ok := methodMultipliers[method]
	if !ok {
		return base
	}
	base.calories *= mult.calories
	base.fat *= mult.fat
	return base
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// bandFor picks the plausibility band for a candidate, preferring a
// configured override over the compiled-in category band.
func bandFor(candidate model.FoodCandidate, overrides service.BandReference) band {
	if overrides != nil {
		if minCal, maxCal, ok := overrides.CalorieBand(candidate.Name); ok {
			return band{minCal100: minCal, maxCal100: maxCal}
		}
	}
	profile, _ := profileFor(candidate)
	return profile.band
}

// clampToBand pins calories per 100g inside the category's plausibility
// window, returning the clamped value and whether clamping happened.
func clampToBand(cal100 float64, b band) (float64, bool) {
	if cal100 < b.minCal100 {
		return b.minCal100, true
	}
	if cal100 > b.maxCal100 {
		return b.maxCal100, true
	}
	return cal100, false
}
