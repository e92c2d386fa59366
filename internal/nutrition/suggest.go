// internal/nutrition/suggest.go
package nutrition

import (
	"fmt"
	"math"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

const (
	proteinGapThreshold  = 10.0 // grams
	calorieGapThreshold  = 50.0 // kcal
	proteinReadyFraction = 0.8
)

// OnTrackMessage is shown when Suggest returns nothing.
const OnTrackMessage = "You're on track! Add more ingredients below or proceed to checkout."

type SuggestionKind string

const (
	SuggestProtein SuggestionKind = "protein"
	SuggestCarb    SuggestionKind = "carb"
)

type Suggestion struct {
	Kind       SuggestionKind    `json:"kind"`
	Ingredient models.Ingredient `json:"ingredient"`
	// Grams is the amount that closes the protein gap; 0 for carb suggestions.
	Grams int    `json:"grams,omitempty"`
	Text  string `json:"text"`
}

// Selection reports whether an ingredient is already in the meal.
type Selection interface {
	Contains(id string) bool
}

// Suggest runs one greedy step toward the targets over the cuisine catalog.
// A protein gap above 10 g wins; otherwise a calorie gap above 50 kcal with
// protein at 80% of target or more yields a carb pick. Ingredients already
// selected are never suggested, and ties go to the earlier catalog entry.
func Suggest(totals models.MacroTotals, targets models.Targets, catalog []models.Ingredient, selected Selection) []Suggestion {
	proteinNeeded := targets.Protein - totals.Protein
	caloriesNeeded := targets.Calories - totals.Calories

	if proteinNeeded > proteinGapThreshold {
		best, ok := bestUnselected(catalog, selected, models.CategoryProtein, func(i models.Ingredient) float64 { return i.ProteinPer100g })
		if !ok || best.ProteinPer100g <= 0 {
			return nil
		}
		grams := int(math.Ceil(proteinNeeded / best.ProteinPer100g * 100))
		return []Suggestion{{
			Kind:       SuggestProtein,
			Ingredient: best,
			Grams:      grams,
			Text:       fmt.Sprintf("Add %dg %s for %.0fg more protein", grams, best.Name, proteinNeeded),
		}}
	}

	if caloriesNeeded > calorieGapThreshold && totals.Protein >= targets.Protein*proteinReadyFraction {
		best, ok := bestUnselected(catalog, selected, models.CategoryCarb, func(i models.Ingredient) float64 { return i.CarbsPer100g })
		if !ok {
			return nil
		}
		return []Suggestion{{
			Kind:       SuggestCarb,
			Ingredient: best,
			Text:       fmt.Sprintf("Add %s for balanced energy", best.Name),
		}}
	}

	return nil
}

// bestUnselected is a stable max: a later entry must be strictly greater to
// replace the current pick.
func bestUnselected(catalog []models.Ingredient, selected Selection, cat models.Category, key func(models.Ingredient) float64) (models.Ingredient, bool) {
	var (
		best  models.Ingredient
		found bool
	)
	for _, ing := range catalog {
		if ing.Category != cat {
			continue
		}
		if selected != nil && selected.Contains(ing.ID) {
			continue
		}
		if !found || key(ing) > key(best) {
			best, found = ing, true
		}
	}
	return best, found
}
