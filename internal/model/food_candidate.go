package model

import (
	"fmt"
	"strings"
)

// CookingMethod describes how a food was prepared, when detectable from speech.
type CookingMethod string

// Cooking method constants.
const (
	MethodGrilled CookingMethod = "grilled"
	MethodFried   CookingMethod = "fried"
	MethodBoiled  CookingMethod = "boiled"
	MethodBaked   CookingMethod = "baked"
	MethodRaw     CookingMethod = "raw"
	MethodUnknown CookingMethod = "unknown"
)

// ParseCookingMethod maps a backend-reported method string onto the closed enum.
// Unrecognized values collapse to MethodUnknown rather than failing the candidate.
func ParseCookingMethod(s string) CookingMethod {
	switch CookingMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodGrilled, MethodFried, MethodBoiled, MethodBaked, MethodRaw:
		return CookingMethod(strings.ToLower(strings.TrimSpace(s)))
	default:
		return MethodUnknown
	}
}

// AlimentaryKind classifies a food mention for normalization purposes.
type AlimentaryKind string

// Alimentary kind constants.
const (
	KindSolid    AlimentaryKind = "solid"
	KindLiquid   AlimentaryKind = "liquid"
	KindBeverage AlimentaryKind = "mixed_beverage"
	KindSoup     AlimentaryKind = "soup"
	KindSauce    AlimentaryKind = "sauce"
)

// ParseAlimentaryKind maps a backend-reported kind onto the closed enum,
// defaulting to solid for anything unrecognized.
func ParseAlimentaryKind(s string) AlimentaryKind {
	switch AlimentaryKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLiquid, KindBeverage, KindSoup, KindSauce:
		return AlimentaryKind(strings.ToLower(strings.TrimSpace(s)))
	default:
		return KindSolid
	}
}

// FoodCandidate is one normalized food mention extracted from a transcript.
// Weights are edible grams for solids and milliliters for liquids.
type FoodCandidate struct {
	Name           string
	SpokenPhrase   string
	SpokenQuantity float64
	SpokenUnit     string
	Kind           AlimentaryKind
	Method         CookingMethod
	WeightLow      float64
	WeightEstimate float64
	WeightHigh     float64
	Assumptions    []string
	Confidence     float64

	// Per-field confidences are only populated by the richer-schema strategy.
	QuantityConfidence *float64
	MethodConfidence   *float64
}

// Validate enforces the candidate invariants: a non-empty name, a positive
// point estimate inside [low, high], and a confidence in [0,1].
func (c *FoodCandidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("candidate name is required")
	}
	if c.WeightEstimate <= 0 {
		return fmt.Errorf("weight estimate must be positive, got %.2f", c.WeightEstimate)
	}
	if c.WeightLow > c.WeightEstimate || c.WeightEstimate > c.WeightHigh {
		return fmt.Errorf("weight estimate %.2f outside range [%.2f, %.2f]",
			c.WeightEstimate, c.WeightLow, c.WeightHigh)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", c.Confidence)
	}
	return nil
}

// AddAssumption records a conversion assumption made while normalizing the
// candidate, skipping duplicates.
func (c *FoodCandidate) AddAssumption(assumption string) {
	for _, a := range c.Assumptions {
		if a == assumption {
			return
		}
	}
	c.Assumptions = append(c.Assumptions, assumption)
}

// ClampRange forces the [low, high] range to bracket the point estimate.
func (c *FoodCandidate) ClampRange() {
	if c.WeightLow > c.WeightEstimate {
		c.WeightLow = c.WeightEstimate
	}
	if c.WeightHigh < c.WeightEstimate {
		c.WeightHigh = c.WeightEstimate
	}
}
