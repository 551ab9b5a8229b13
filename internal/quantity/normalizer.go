// Package quantity turns transcript text into normalized food candidates.
//
// An LLM backend detects the food mentions; everything numeric after that is
// deterministic local conversion driven by the unit table, the portion
// reference, and the lexicon.
package quantity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/lexicon"
	"github.com/mealvoice/mealvoice/internal/llm"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/payload"
	"github.com/mealvoice/mealvoice/internal/service"
)

const (
	// rangeExplicit is the relative band around explicit weight and volume
	// mentions.
	rangeExplicit = 0.10
	// rangeCounted is the relative band around counted portions.
	rangeCounted = 0.20
	// Vague mentions get an asymmetric band and a confidence ceiling.
	vagueLowFactor     = 0.4
	vagueHighFactor    = 1.8
	vagueMaxConfidence = 0.45
	// defaultPortionGrams is the fallback when the portion reference does not
	// know the food.
	defaultPortionGrams = 150.0
	defaultCacheTTL     = 15 * time.Minute
)

// Detector implements service.QuantityDetector on top of an LLM client.
type Detector struct {
	client   llm.Client
	lex      *lexicon.Lexicon
	portions service.PortionReference
	cache    *detectionCache
	limiter  *llm.RateLimiter
	logger   *slog.Logger

	fieldConfidence bool
	temperature     float64
	maxTokens       int
}

// DetectorOption customizes a Detector.
type DetectorOption func(*Detector)

// WithFieldConfidence asks the backend for per-field confidence scores.
func WithFieldConfidence() DetectorOption {
	return func(d *Detector) { d.fieldConfidence = true }
}

// WithLexicon replaces the compiled-in lexicon.
func WithLexicon(lex *lexicon.Lexicon) DetectorOption {
	return func(d *Detector) { d.lex = lex }
}

// WithPortionReference replaces the compiled-in portion tables.
func WithPortionReference(ref service.PortionReference) DetectorOption {
	return func(d *Detector) { d.portions = ref }
}

// WithRateLimiter paces backend calls through the given limiter.
func WithRateLimiter(limiter *llm.RateLimiter) DetectorOption {
	return func(d *Detector) { d.limiter = limiter }
}

// WithCacheTTL changes how long detection results are memoized.
func WithCacheTTL(ttl time.Duration) DetectorOption {
	return func(d *Detector) { d.cache = newDetectionCache(ttl) }
}

// NewDetector creates a quantity detector backed by the given LLM client.
func NewDetector(client llm.Client, logger *slog.Logger, opts ...DetectorOption) *Detector {
	d := &Detector{
		client:      client,
		lex:         lexicon.Default(),
		portions:    NewStaticPortions(),
		cache:       newDetectionCache(defaultCacheTTL),
		logger:      logger,
		temperature: 0.1,
		maxTokens:   2000,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// rawCandidate is the shape the backend is asked to produce. All numeric
// interpretation stays local.
type rawCandidate struct {
	Name               string   `json:"name"`
	SpokenPhrase       string   `json:"spoken_phrase"`
	Quantity           float64  `json:"quantity"`
	Unit               string   `json:"unit"`
	Kind               string   `json:"kind"`
	CookingMethod      string   `json:"cooking_method"`
	Confidence         float64  `json:"confidence"`
	QuantityConfidence *float64 `json:"quantity_confidence,omitempty"`
	MethodConfidence   *float64 `json:"method_confidence,omitempty"`
}

// DetectQuantities extracts normalized food candidates from transcript text.
// An empty result with a nil error means the transcript mentions no food.
func (d *Detector) DetectQuantities(ctx context.Context, text string) ([]model.FoodCandidate, error) {
	key := d.cacheKey(text)
	if cached, ok := d.cache.get(key); ok {
		d.logger.Debug("detection cache hit", "candidates", len(cached))
		return cached, nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	response, err := d.client.Complete(ctx, llm.Request{
		System:      detectionSystemPrompt,
		Prompt:      d.buildPrompt(text),
		Temperature: d.temperature,
		MaxTokens:   d.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("quantity detection failed: %w", err)
	}

	arrayJSON, err := payload.ExtractArray(response)
	if err != nil {
		return nil, fmt.Errorf("quantity detection returned no parsable array: %w", err)
	}

	var raw []rawCandidate
	if err := json.Unmarshal([]byte(arrayJSON), &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode candidate array: %v", common.ErrBackendProtocol, err)
	}

	if len(raw) == 0 {
		empty := []model.FoodCandidate{}
		d.cache.set(key, empty)
		return empty, nil
	}

	candidates := make([]model.FoodCandidate, 0, len(raw))
	for i, rc := range raw {
		candidate, err := d.normalize(rc)
		if err != nil {
			d.logger.Warn("dropping invalid candidate",
				"index", i,
				"name", rc.Name,
				"error", err)
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: all %d detected candidates were invalid",
			common.ErrValidationFailed, len(raw))
	}

	d.cache.set(key, candidates)
	return candidates, nil
}

// normalize applies the canonical conversion rules to one raw detection.
func (d *Detector) normalize(rc rawCandidate) (model.FoodCandidate, error) {
	candidate := model.FoodCandidate{
		Name:               strings.TrimSpace(rc.Name),
		SpokenPhrase:       strings.TrimSpace(rc.SpokenPhrase),
		SpokenQuantity:     rc.Quantity,
		SpokenUnit:         strings.TrimSpace(rc.Unit),
		Kind:               model.ParseAlimentaryKind(rc.Kind),
		Method:             model.ParseCookingMethod(rc.CookingMethod),
		Confidence:         clampUnit(rc.Confidence),
		QuantityConfidence: rc.QuantityConfidence,
		MethodConfidence:   rc.MethodConfidence,
	}

	if candidate.Method == model.MethodUnknown {
		if method, ok := d.lex.MethodFromPhrase(candidate.SpokenPhrase); ok {
			candidate.Method = method
		}
	}

	quantity := rc.Quantity
	if quantity <= 0 {
		if mult, ok := d.lex.FractionOf(candidate.SpokenPhrase); ok {
			quantity = mult
		} else {
			quantity = 1
		}
	}

	vague := d.lex.HasVagueQuantity(candidate.SpokenPhrase)
	unit := lookupUnit(candidate.SpokenUnit)

	switch {
	case vague:
		base, known := d.portions.TypicalPortionGrams(candidate.Name)
		if !known {
			base = defaultPortionGrams
		}
		candidate.WeightEstimate = base
		candidate.WeightLow = base * vagueLowFactor
		candidate.WeightHigh = base * vagueHighFactor
		if candidate.Confidence > vagueMaxConfidence {
			candidate.Confidence = vagueMaxConfidence
		}
		candidate.AddAssumption(fmt.Sprintf(
			"vague quantity: assumed one typical portion of %.0fg", base))

	case unit.category == UnitWeight, unit.category == UnitVolume, unit.category == UnitContainer:
		grams := quantity * unit.grams
		if d.lex.HasWholeMarker(candidate.SpokenPhrase) {
			if yield, ok := d.portions.EdibleYield(candidate.Name); ok {
				grams *= yield
				candidate.AddAssumption(fmt.Sprintf(
					"whole item: applied %.0f%% edible yield to spoken weight", yield*100))
			}
		}
		candidate.WeightEstimate = grams
		candidate.WeightLow = grams * (1 - rangeExplicit)
		candidate.WeightHigh = grams * (1 + rangeExplicit)
		if unit.category == UnitContainer {
			candidate.AddAssumption(fmt.Sprintf(
				"assumed standard %s of %.0fg", strings.ToLower(candidate.SpokenUnit), unit.grams))
		}

	default: // counted mention
		portion, known := d.portions.TypicalPortionGrams(candidate.Name)
		if !known {
			portion = defaultPortionGrams
			candidate.AddAssumption(fmt.Sprintf(
				"unknown food: assumed %.0fg per unit", defaultPortionGrams))
		} else {
			candidate.AddAssumption(fmt.Sprintf(
				"assumed typical portion of %.0fg per unit", portion))
		}
		grams := quantity * portion
		if d.lex.HasWholeMarker(candidate.SpokenPhrase) {
			if yield, ok := d.portions.EdibleYield(candidate.Name); ok {
				grams *= yield
				candidate.AddAssumption(fmt.Sprintf(
					"whole item: applied %.0f%% edible yield", yield*100))
			}
		}
		candidate.WeightEstimate = grams
		candidate.WeightLow = grams * (1 - rangeCounted)
		candidate.WeightHigh = grams * (1 + rangeCounted)
	}

	candidate.ClampRange()
	if err := candidate.Validate(); err != nil {
		return model.FoodCandidate{}, err
	}
	return candidate, nil
}

func (d *Detector) cacheKey(text string) string {
	schema := "budget"
	if d.fieldConfidence {
		schema = "rich"
	}
	sum := sha256.Sum256([]byte(schema + "\x00" + strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

func (d *Detector) buildPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Transcript of a spoken meal description:\n\n")
	sb.WriteString(text)
	sb.WriteString("\n\nList every food or drink the speaker says they consumed. ")
	sb.WriteString("Respond with a JSON array only. Each element must have:\n")
	sb.WriteString(`- "name": canonical English food name` + "\n")
	sb.WriteString(`- "spoken_phrase": the exact words used, in the original language` + "\n")
	sb.WriteString(`- "quantity": the spoken amount as a number (0 if none was said)` + "\n")
	sb.WriteString(`- "unit": the spoken unit verbatim, or "" if none` + "\n")
	sb.WriteString(`- "kind": one of solid, liquid, mixed_beverage, soup, sauce` + "\n")
	sb.WriteString(`- "cooking_method": one of grilled, fried, boiled, baked, raw, unknown` + "\n")
	sb.WriteString(`- "confidence": 0.0-1.0, how sure you are this food was actually eaten` + "\n")
	if d.fieldConfidence {
		sb.WriteString(`- "quantity_confidence": 0.0-1.0 for the quantity specifically` + "\n")
		sb.WriteString(`- "method_confidence": 0.0-1.0 for the cooking method specifically` + "\n")
	}
	sb.WriteString("\nDo not convert units or guess weights; report exactly what was said. ")
	sb.WriteString("If no food is mentioned, respond with [].")
	return sb.String()
}

const detectionSystemPrompt = `You are a nutrition transcription analyst. You read transcripts of people describing meals, often in Egyptian Arabic or mixed Arabic and English, and you list the foods they mention. You only report what the speaker actually said they ate or drank. You never invent foods, never convert units, and always answer with a JSON array.`

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
