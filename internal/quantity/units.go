package quantity

import "strings"

// UnitCategory groups spoken units by how they convert to edible weight.
type UnitCategory string

// Unit categories.
const (
	UnitWeight    UnitCategory = "weight"    // explicit mass, net edible amount
	UnitVolume    UnitCategory = "volume"    // explicit volume in ml
	UnitContainer UnitCategory = "container" // standard serving vessels
	UnitCount     UnitCategory = "count"     // pieces of a named dish
	UnitNone      UnitCategory = "none"      // no unit spoken
)

type unitInfo struct {
	category UnitCategory
	grams    float64 // grams (or ml) per one unit; zero for count units
}

// unitTable maps spoken units onto conversion factors. Count units carry no
// factor because counted mentions multiply the food's typical portion weight
// instead of a literal unit weight.
var unitTable = []struct {
	name string
	info unitInfo
}{
	// weight
	{"g", unitInfo{UnitWeight, 1}},
	{"gram", unitInfo{UnitWeight, 1}},
	{"grams", unitInfo{UnitWeight, 1}},
	{"جرام", unitInfo{UnitWeight, 1}},
	{"kg", unitInfo{UnitWeight, 1000}},
	{"kilo", unitInfo{UnitWeight, 1000}},
	{"kilogram", unitInfo{UnitWeight, 1000}},
	{"كيلو", unitInfo{UnitWeight, 1000}},
	{"oz", unitInfo{UnitWeight, 28.35}},
	{"ounce", unitInfo{UnitWeight, 28.35}},
	{"lb", unitInfo{UnitWeight, 453.6}},
	{"pound", unitInfo{UnitWeight, 453.6}},

	// volume
	{"ml", unitInfo{UnitVolume, 1}},
	{"milliliter", unitInfo{UnitVolume, 1}},
	{"l", unitInfo{UnitVolume, 1000}},
	{"liter", unitInfo{UnitVolume, 1000}},
	{"لتر", unitInfo{UnitVolume, 1000}},

	// containers
	{"cup", unitInfo{UnitContainer, 240}},
	{"كوب", unitInfo{UnitContainer, 240}},
	{"glass", unitInfo{UnitContainer, 250}},
	{"كباية", unitInfo{UnitContainer, 250}},
	{"tablespoon", unitInfo{UnitContainer, 15}},
	{"tbsp", unitInfo{UnitContainer, 15}},
	{"معلقة", unitInfo{UnitContainer, 15}},
	{"teaspoon", unitInfo{UnitContainer, 5}},
	{"tsp", unitInfo{UnitContainer, 5}},
	{"can", unitInfo{UnitContainer, 330}},
	{"علبة", unitInfo{UnitContainer, 330}},
	{"bottle", unitInfo{UnitContainer, 500}},
	{"إزازة", unitInfo{UnitContainer, 500}},
	{"bowl", unitInfo{UnitContainer, 300}},
	{"طبق", unitInfo{UnitContainer, 350}},
	{"plate", unitInfo{UnitContainer, 350}},

	// counts
	{"piece", unitInfo{UnitCount, 0}},
	{"pieces", unitInfo{UnitCount, 0}},
	{"قطعة", unitInfo{UnitCount, 0}},
	{"slice", unitInfo{UnitCount, 0}},
	{"slices", unitInfo{UnitCount, 0}},
	{"شريحة", unitInfo{UnitCount, 0}},
	{"loaf", unitInfo{UnitCount, 0}},
	{"رغيف", unitInfo{UnitCount, 0}},
	{"serving", unitInfo{UnitCount, 0}},
	{"unit", unitInfo{UnitCount, 0}},
	{"حبة", unitInfo{UnitCount, 0}},
}

// lookupUnit resolves a spoken unit string. Unknown or empty units are
// treated as counted mentions of the dish itself.
func lookupUnit(unit string) unitInfo {
	normalized := strings.ToLower(strings.TrimSpace(unit))
	if normalized == "" {
		return unitInfo{UnitNone, 0}
	}
	for _, entry := range unitTable {
		if entry.name == normalized {
			return entry.info
		}
	}
	return unitInfo{UnitCount, 0}
}

// CategoryOfUnit exposes the unit classification for the review heuristics.
func CategoryOfUnit(unit string) UnitCategory {
	return lookupUnit(unit).category
}
