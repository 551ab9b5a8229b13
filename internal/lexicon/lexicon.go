// Package lexicon holds the word tables that drive quantity normalization and
// the review heuristics.
//
// The tables are data, not code: they ship with compiled-in defaults and can
// be replaced wholesale from a YAML file so linguistic coverage can grow
// without touching control flow.
package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mealvoice/mealvoice/internal/model"
)

// Lexicon bundles every word table used by the pipeline.
type Lexicon struct {
	// VagueQuantityTerms are words like "some" that widen the weight range
	// and trigger quantity review.
	VagueQuantityTerms []string `yaml:"vague_quantity_terms"`

	// FractionTerms map spoken fractions onto multipliers.
	FractionTerms map[string]float64 `yaml:"fraction_terms"`

	// CookingVerbs map spoken preparation words onto cooking methods.
	CookingVerbs map[string]string `yaml:"cooking_verbs"`

	// WholeMarkers flag gross-weight mentions such as "whole" or "bone-in".
	WholeMarkers []string `yaml:"whole_markers"`

	// RawProteinFoods are foods that require a cooking method before they
	// are plausible meal entries.
	RawProteinFoods []string `yaml:"raw_protein_foods"`

	// NoCookFoods never trigger cooking-method review: dairy, produce,
	// beverages, and branded/processed items.
	NoCookFoods []string `yaml:"no_cook_foods"`
}

// Default returns the compiled-in lexicon covering English and Egyptian
// Arabic meal vocabulary.
func Default() *Lexicon {
	return &Lexicon{
		VagueQuantityTerms: []string{
			"some", "a little", "a bit", "a few", "a couple bites", "a handful",
			"شوية", "بعض", "قليل", "حبة كده",
		},
		FractionTerms: map[string]float64{
			"half":    0.5,
			"quarter": 0.25,
			"third":   1.0 / 3.0,
			"نص":      0.5,
			"نصف":     0.5,
			"ربع":     0.25,
			"تلت":     1.0 / 3.0,
		},
		CookingVerbs: map[string]string{
			"grilled":  string(model.MethodGrilled),
			"fried":    string(model.MethodFried),
			"boiled":   string(model.MethodBoiled),
			"baked":    string(model.MethodBaked),
			"roasted":  string(model.MethodBaked),
			"raw":      string(model.MethodRaw),
			"مشوي":     string(model.MethodGrilled),
			"مشوية":    string(model.MethodGrilled),
			"مقلي":     string(model.MethodFried),
			"مقلية":    string(model.MethodFried),
			"مسلوق":    string(model.MethodBoiled),
			"مسلوقة":   string(model.MethodBoiled),
			"في الفرن": string(model.MethodBaked),
		},
		WholeMarkers: []string{
			"whole", "bone-in", "on the bone", "كاملة", "كامل", "بالعضم",
		},
		RawProteinFoods: []string{
			"chicken", "beef", "lamb", "meat", "fish", "shrimp", "liver",
			"turkey", "duck", "kofta", "فراخ", "لحمة", "سمك", "جمبري", "كبدة",
		},
		NoCookFoods: []string{
			"milk", "yogurt", "cheese", "labneh", "apple", "banana", "orange",
			"salad", "cucumber", "tomato", "dates", "bread", "water", "juice",
			"soda", "cola", "coffee", "tea", "chocolate", "biscuit", "chips",
			"لبن", "زبادي", "جبنة", "عيش", "سلطة", "عصير", "شاي", "قهوة",
		},
	}
}

// Load reads a lexicon from a YAML file. Missing tables fall back to the
// compiled-in defaults so a partial file only overrides what it names.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var loaded Lexicon
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	base := Default()
	if len(loaded.VagueQuantityTerms) > 0 {
		base.VagueQuantityTerms = loaded.VagueQuantityTerms
	}
	if len(loaded.FractionTerms) > 0 {
		base.FractionTerms = loaded.FractionTerms
	}
	if len(loaded.CookingVerbs) > 0 {
		base.CookingVerbs = loaded.CookingVerbs
	}
	if len(loaded.WholeMarkers) > 0 {
		base.WholeMarkers = loaded.WholeMarkers
	}
	if len(loaded.RawProteinFoods) > 0 {
		base.RawProteinFoods = loaded.RawProteinFoods
	}
	if len(loaded.NoCookFoods) > 0 {
		base.NoCookFoods = loaded.NoCookFoods
	}
	return base, nil
}

// HasVagueQuantity reports whether the phrase contains a vague quantity term.
// Terms match on word boundaries; "شوية" must not match inside "مشوية".
func (l *Lexicon) HasVagueQuantity(phrase string) bool {
	lower := strings.ToLower(phrase)
	for _, term := range l.VagueQuantityTerms {
		if containsWord(lower, term) {
			return true
		}
	}
	return false
}

// FractionOf returns the multiplier for a fraction term found in the phrase.
func (l *Lexicon) FractionOf(phrase string) (float64, bool) {
	lower := strings.ToLower(phrase)
	for term, mult := range l.FractionTerms {
		if containsWord(lower, term) {
			return mult, true
		}
	}
	return 0, false
}

// MethodFromPhrase scans the phrase for a cooking verb and returns the method
// it implies. English verbs match on word boundaries so "raw" stays out of
// "strawberry"; Arabic verbs match as substrings because they carry attached
// prefixes like "ال". Verbs are checked in sorted order so a phrase naming
// several methods always resolves the same way.
func (l *Lexicon) MethodFromPhrase(phrase string) (model.CookingMethod, bool) {
	lower := strings.ToLower(phrase)
	verbs := make([]string, 0, len(l.CookingVerbs))
	for verb := range l.CookingVerbs {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)
	for _, verb := range verbs {
		matched := false
		if isASCII(verb) {
			matched = containsWord(lower, verb)
		} else {
			matched = strings.Contains(lower, verb)
		}
		if matched {
			return model.CookingMethod(l.CookingVerbs[verb]), true
		}
	}
	return model.MethodUnknown, false
}

// HasWholeMarker reports whether the phrase reads as a gross-weight mention.
func (l *Lexicon) HasWholeMarker(phrase string) bool {
	return containsAny(phrase, l.WholeMarkers)
}

// IsRawProtein reports whether the food name is an animal protein that needs
// a cooking method.
func (l *Lexicon) IsRawProtein(name string) bool {
	return containsAny(name, l.RawProteinFoods)
}

// IsNoCookFood reports whether the food never needs cooking-method review.
func (l *Lexicon) IsNoCookFood(name string) bool {
	return containsAny(name, l.NoCookFoods)
}

func containsAny(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// containsWord matches a term on rough word boundaries so "half" does not
// match "halfway" but multi-word terms still match inside a phrase.
func containsWord(text, term string) bool {
	idx := strings.Index(text, term)
	for idx >= 0 {
		before := idx == 0 || text[idx-1] == ' '
		afterIdx := idx + len(term)
		after := afterIdx == len(text) || text[afterIdx] == ' '
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], term)
		if next < 0 {
			break
		}
		idx += 1 + next
	}
	return false
}
