// internal/models/meal.go
package models

import (
	"time"
)

// Ingredient is catalog reference data. Every density is per 100 grams.
type Ingredient struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	CuisineID       string   `json:"cuisine_id" yaml:"cuisine_id"`
	Category        Category `json:"category" yaml:"category"`
	CaloriesPer100g float64  `json:"calories_per_100g" yaml:"calories_per_100g"`
	ProteinPer100g  float64  `json:"protein_per_100g" yaml:"protein_per_100g"`
	CarbsPer100g    float64  `json:"carbs_per_100g" yaml:"carbs_per_100g"`
	FatsPer100g     float64  `json:"fats_per_100g" yaml:"fats_per_100g"`
	CostPer100g     float64  `json:"cost_per_100g" yaml:"cost_per_100g"`
}

type Category string

const (
	CategoryProtein Category = "protein"
	CategoryCarb    Category = "carb"
	CategoryFat     Category = "fat"
	CategoryOther   Category = "other"
)

// SelectedIngredient is one line of a meal in progress.
type SelectedIngredient struct {
	Ingredient Ingredient `json:"ingredient"`
	Quantity   float64    `json:"quantity"` // grams
}

type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Cost     float64 `json:"cost"`
}

// Targets are per-meal goals fed into the meal builder.
type Targets struct {
	Calories float64 `json:"target_calories"`
	Protein  float64 `json:"target_protein"`
}

// UserMeal is a meal the user saved from the builder or picked from the
// signature menu.
type UserMeal struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	Name            string               `json:"name"`
	MealType        string               `json:"meal_type"`
	SignatureMealID string               `json:"signature_meal_id,omitempty"`
	Ingredients     []SelectedIngredient `json:"ingredients,omitempty"`
	TotalCalories   float64              `json:"total_calories"`
	TotalProtein    float64              `json:"total_protein"`
	TotalCarbs      float64              `json:"total_carbs"`
	TotalFats       float64              `json:"total_fats"`
	TotalCost       float64              `json:"total_cost"`
	Tier            Tier                 `json:"tier"`
	CreatedAt       time.Time            `json:"created_at"`
}

type Tier string

const (
	TierBasic   Tier = "basic"
	TierGood    Tier = "good"
	TierGourmet Tier = "gourmet"
)

// ParseTier accepts the three builder tiers. An empty string means the
// builder default.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case "":
		return TierGood, nil
	case TierBasic, TierGood, TierGourmet:
		return Tier(s), nil
	default:
		return "", ErrUnknownTier
	}
}

type Plan string

const (
	PlanThreeDay Plan = "3-day"
	PlanWeekly   Plan = "weekly"
	PlanMonthly  Plan = "monthly"
)

func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case "":
		return PlanThreeDay, nil
	case PlanThreeDay, PlanWeekly, PlanMonthly:
		return Plan(s), nil
	default:
		return "", ErrUnknownPlan
	}
}
