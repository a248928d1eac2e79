package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
)

// Upstream payloads drift: the same value shows up under different keys from
// one completion to the next, items arrive as plain strings or as objects,
// numbers arrive as strings. Everything ambiguous is resolved here, once,
// so no loose shape ever reaches the store or the aggregator.

const (
	DefaultPortionNotes = "unknown portions"
	DefaultMealName     = "Meal"
	DefaultExplanation  = "Estimated from the description provided. Values are approximate."
)

const maxSuggestedSwaps = 3

// NormalizeVision maps a raw vision payload onto the canonical VisionResult.
func NormalizeVision(payload map[string]any) models.VisionResult {
	out := models.VisionResult{
		IdentifiedFoods: pickStringList(payload, "identifiedFoods", "identified_foods", "foods", "items"),
		PortionNotes:    pickString(payload, "portionNotes", "portion_notes", "portions"),
		Clarity:         clampRange(pickNumber(payload, "clarity", "confidence", "clarityScore", "clarity_score"), 0, 100),
	}
	if out.PortionNotes == "" {
		out.PortionNotes = DefaultPortionNotes
	}
	if out.IdentifiedFoods == nil {
		out.IdentifiedFoods = []string{}
	}
	return out
}

// NormalizeMacros maps a raw macro payload onto the canonical MacroResult.
func NormalizeMacros(payload map[string]any) models.MacroResult {
	out := models.MacroResult{
		MealName:        pickString(payload, "mealName", "meal_name", "name", "title"),
		Calories:        pickNumber(payload, "calories", "kcal", "energy"),
		Protein:         pickNumber(payload, "protein_g", "protein", "proteins"),
		Carbs:           pickNumber(payload, "carbs_g", "carbs", "carbohydrates"),
		Fat:             pickNumber(payload, "fat_g", "fat", "fats"),
		IdentifiedFoods: pickStringList(payload, "identifiedFoods", "identified_foods", "foods", "items"),
		SuggestedSwaps:  pickStringList(payload, "suggestedSwaps", "suggested_swaps", "swaps", "suggestions"),
		Explanation:     pickString(payload, "explanation", "notes", "reasoning"),
	}
	if out.MealName == "" {
		out.MealName = DefaultMealName
	}
	if out.Explanation == "" {
		out.Explanation = DefaultExplanation
	}
	if len(out.SuggestedSwaps) > maxSuggestedSwaps {
		out.SuggestedSwaps = out.SuggestedSwaps[:maxSuggestedSwaps]
	}
	return out
}

// pickNumber returns the first key that coerces to a finite number, floored
// at zero and rounded to the nearest integer. Anything unparseable is 0.
func pickNumber(payload map[string]any, keys ...string) int {
	for _, k := range keys {
		v, ok := payload[k]
		if !ok {
			continue
		}
		return CoerceNumber(v)
	}
	return 0
}

// CoerceNumber turns an arbitrary JSON value into a non-negative integer.
func CoerceNumber(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(math.Round(f))
}

func pickString(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// pickStringList accepts lists of strings or lists of objects carrying a
// name field, which is how item lists arrive from the two providers.
func pickStringList(payload map[string]any, keys ...string) []string {
	for _, k := range keys {
		raw, ok := payload[k].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, entry := range raw {
			switch e := entry.(type) {
			case string:
				if strings.TrimSpace(e) != "" {
					out = append(out, strings.TrimSpace(e))
				}
			case map[string]any:
				if name := pickString(e, "name", "food", "label"); name != "" {
					out = append(out, name)
				}
			case float64:
				out = append(out, strconv.FormatFloat(e, 'f', -1, 64))
			}
		}
		return out
	}
	return nil
}

func clampRange(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatDescription renders a vision result as the one-line description the
// reasoning capability consumes, so both entry paths share a single shape.
func FormatDescription(v models.VisionResult) string {
	foods := "unidentified meal"
	if len(v.IdentifiedFoods) > 0 {
		foods = strings.Join(v.IdentifiedFoods, ", ")
	}
	return fmt.Sprintf("%s (%s)", foods, v.PortionNotes)
}
