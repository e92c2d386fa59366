// internal/nutrition/targets.go

// Package nutrition holds the meal calculator: daily target estimation, the
// per-meal macro aggregator and the ingredient suggestion heuristic. It does
// no I/O and never logs.
package nutrition

import (
	"math"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// activityMultipliers maps an activity level to its TDEE multiplier.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

var goalAdjustments = map[Goal]float64{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     300,
}

const proteinPerKg = 2.2

// Biometrics are the calculator inputs. Ranges are the caller's job.
type Biometrics struct {
	Age      float64       `json:"age"`
	WeightKg float64       `json:"weight"`
	HeightCm float64       `json:"height"`
	Gender   Gender        `json:"gender"`
	Activity ActivityLevel `json:"activity_level"`
	Goal     Goal          `json:"goal"`
}

// DailyTargets is the estimator output. Calories and Protein are rounded;
// BMR and TDEE are kept unrounded for display.
type DailyTargets struct {
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
	Calories int     `json:"calories"`
	Protein  int     `json:"protein"`
}

// ActivityMultiplier returns the multiplier for level. Unknown levels fall
// back to moderate.
func ActivityMultiplier(level ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[Moderate]
}

// GoalAdjustment returns the caloric offset for goal; unknown goals get 0.
func GoalAdjustment(goal Goal) float64 {
	return goalAdjustments[goal]
}

// BMR uses Mifflin-St Jeor. Anything other than Male takes the female
// constant.
func BMR(b Biometrics) float64 {
	base := 10*b.WeightKg + 6.25*b.HeightCm - 5*b.Age
	if b.Gender == Male {
		return base + 5
	}
	return base - 161
}

// EstimateTargets derives daily calorie and protein goals. NaN inputs
// produce NaN and out-of-range integer conversions; validate first.
func EstimateTargets(b Biometrics) DailyTargets {
	bmr := BMR(b)
	tdee := bmr * ActivityMultiplier(b.Activity)
	return DailyTargets{
		BMR:      bmr,
		TDEE:     tdee,
		Calories: int(math.Round(tdee + GoalAdjustment(b.Goal))),
		Protein:  int(math.Round(b.WeightKg * proteinPerKg)),
	}
}

// Per-meal target bounds enforced by the builder's inputs.
const (
	MinTargetCalories = 300
	MaxTargetCalories = 1200
	MinTargetProtein  = 20
	MaxTargetProtein  = 100

	DefaultTargetCalories = 600
	DefaultTargetProtein  = 50
)

// DefaultTargets is what the builder starts with before the calculator runs.
func DefaultTargets() models.Targets {
	return models.Targets{Calories: DefaultTargetCalories, Protein: DefaultTargetProtein}
}

// ClampTargets bounds t to the builder's input ranges.
func ClampTargets(t models.Targets) models.Targets {
	return models.Targets{
		Calories: clamp(t.Calories, MinTargetCalories, MaxTargetCalories),
		Protein:  clamp(t.Protein, MinTargetProtein, MaxTargetProtein),
	}
}

// TargetsFromDaily hands calculator results to the builder, which treats
// them as per-meal goals and clamps them.
func TargetsFromDaily(d DailyTargets) models.Targets {
	return ClampTargets(models.Targets{Calories: float64(d.Calories), Protein: float64(d.Protein)})
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
