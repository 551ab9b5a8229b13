package quantity

import "strings"

// StaticPortions is the compiled-in portion reference. It implements
// service.PortionReference and is the fallback when no SQLite reference
// store is configured.
type StaticPortions struct{}

// NewStaticPortions returns the compiled-in reference tables.
func NewStaticPortions() *StaticPortions {
	return &StaticPortions{}
}

// typicalPortions holds edible grams for one counted unit of a food.
// Keys are matched as substrings of the lowercased food name so "grilled
// chicken breast" resolves through "chicken breast" before "chicken".
var typicalPortions = []struct {
	key   string
	grams float64
}{
	{"chicken breast", 170},
	{"chicken thigh", 110},
	{"chicken", 150},
	{"فراخ", 150},
	{"burger", 180},
	{"kofta", 60},
	{"كفتة", 60},
	{"egg", 55},
	{"بيضة", 55},
	{"banana", 120},
	{"موزة", 120},
	{"apple", 180},
	{"تفاحة", 180},
	{"orange", 150},
	{"برتقالة", 150},
	{"date", 8},
	{"بلحة", 8},
	{"falafel", 30},
	{"طعمية", 30},
	{"bread", 90},
	{"عيش", 90},
	{"pita", 90},
	{"toast", 30},
	{"biscuit", 12},
	{"rice", 200},
	{"رز", 200},
	{"pasta", 220},
	{"مكرونة", 220},
	{"fish", 180},
	{"سمك", 180},
	{"shrimp", 15},
	{"جمبري", 15},
	{"potato", 170},
	{"بطاطس", 170},
	{"slice of pizza", 110},
	{"pizza", 110},
}

// edibleYields maps whole or bone-in mentions onto gross-to-edible
// multipliers.
var edibleYields = []struct {
	key   string
	yield float64
}{
	{"chicken", 0.65},
	{"فراخ", 0.65},
	{"duck", 0.6},
	{"بط", 0.6},
	{"fish", 0.55},
	{"سمك", 0.55},
	{"shrimp", 0.5},
	{"جمبري", 0.5},
	{"watermelon", 0.55},
	{"بطيخ", 0.55},
	{"banana", 0.65},
	{"موز", 0.65},
	{"orange", 0.72},
	{"برتقال", 0.72},
}

// TypicalPortionGrams returns the edible weight of one counted unit of the
// named food.
func (s *StaticPortions) TypicalPortionGrams(name string) (float64, bool) {
	lower := strings.ToLower(name)
	for _, p := range typicalPortions {
		if strings.Contains(lower, p.key) {
			return p.grams, true
		}
	}
	return 0, false
}

// EdibleYield returns the gross-to-edible multiplier for whole mentions of
// the named food.
func (s *StaticPortions) EdibleYield(name string) (float64, bool) {
	lower := strings.ToLower(name)
	for _, y := range edibleYields {
		if strings.Contains(lower, y.key) {
			return y.yield, true
		}
	}
	return 0, false
}
