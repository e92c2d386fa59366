// internal/pricing/pricing.go

// Package pricing turns ingredient cost into a per-meal price (tier markup)
// and a checkout quote (plan discount).
package pricing

import (
	"fmt"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

var tierMarkup = map[models.Tier]float64{
	models.TierBasic:   60,
	models.TierGood:    90,
	models.TierGourmet: 140,
}

var planDiscountPercent = map[models.Plan]float64{
	models.PlanThreeDay: 0,
	models.PlanWeekly:   5,
	models.PlanMonthly:  15,
}

// Markup returns the flat markup for tier.
func Markup(tier models.Tier) (float64, error) {
	m, ok := tierMarkup[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownTier, tier)
	}
	return m, nil
}

// PricePerMeal is ingredient cost plus the tier markup. No discount here.
func PricePerMeal(ingredientCost float64, tier models.Tier) (float64, error) {
	m, err := Markup(tier)
	if err != nil {
		return 0, err
	}
	return ingredientCost + m, nil
}

func DiscountPercent(plan models.Plan) (float64, error) {
	d, ok := planDiscountPercent[plan]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownPlan, plan)
	}
	return d, nil
}

// ApplyPlan discounts a per-meal price for plan.
func ApplyPlan(pricePerMeal float64, plan models.Plan) (float64, error) {
	d, err := DiscountPercent(plan)
	if err != nil {
		return 0, err
	}
	return pricePerMeal * (1 - d/100), nil
}

type Quote struct {
	IngredientCost  float64     `json:"ingredient_cost"`
	Tier            models.Tier `json:"tier"`
	Markup          float64     `json:"markup"`
	PricePerMeal    float64     `json:"price_per_meal"`
	Plan            models.Plan `json:"plan"`
	DiscountPercent float64     `json:"discount_percent"`
	DiscountedPrice float64     `json:"discounted_price"`
}

// NewQuote builds the checkout breakdown for one meal.
func NewQuote(ingredientCost float64, tier models.Tier, plan models.Plan) (Quote, error) {
	markup, err := Markup(tier)
	if err != nil {
		return Quote{}, err
	}
	discount, err := DiscountPercent(plan)
	if err != nil {
		return Quote{}, err
	}
	price := ingredientCost + markup
	return Quote{
		IngredientCost:  ingredientCost,
		Tier:            tier,
		Markup:          markup,
		PricePerMeal:    price,
		Plan:            plan,
		DiscountPercent: discount,
		DiscountedPrice: price * (1 - discount/100),
	}, nil
}
