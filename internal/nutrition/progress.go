// internal/nutrition/progress.go
package nutrition

import (
	"fmt"
	"math"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

type Progress struct {
	CaloriesPercent float64 `json:"calories_percent"`
	ProteinPercent  float64 `json:"protein_percent"`
}

// PercentOf returns current as a percentage of target, capped at 100.
// A non-positive target reads as 0%.
func PercentOf(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(current/target*100, 100)
}

func MealProgress(totals models.MacroTotals, targets models.Targets) Progress {
	return Progress{
		CaloriesPercent: PercentOf(totals.Calories, targets.Calories),
		ProteinPercent:  PercentOf(totals.Protein, targets.Protein),
	}
}

// Announcement is the one-line status read out after each change. Percents
// here are rounded and not capped.
func Announcement(totals models.MacroTotals, targets models.Targets) string {
	proteinPct := math.Round(totals.Protein / targets.Protein * 100)
	caloriesPct := math.Round(totals.Calories / targets.Calories * 100)
	return fmt.Sprintf("Macros updated. Protein: %.0fg, %.0f%% of target. Calories: %.0f, %.0f%% of target.",
		totals.Protein, proteinPct, totals.Calories, caloriesPct)
}
