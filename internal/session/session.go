// internal/session/session.go

// Package session holds meal-builder sessions: the four-step flow, the
// meal in progress and the choices that price it.
package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/nutrition"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/pricing"
)

// Step is a position in the builder flow.
type Step int

const (
	StepChooseGoal Step = iota + 1
	StepSetTargets
	StepBuildMeal
	StepCheckout
)

func (s Step) String() string {
	switch s {
	case StepChooseGoal:
		return "choose_goal"
	case StepSetTargets:
		return "set_targets"
	case StepBuildMeal:
		return "build_meal"
	case StepCheckout:
		return "checkout"
	default:
		return "unknown"
	}
}

func (s Step) valid() bool {
	return s >= StepChooseGoal && s <= StepCheckout
}

// FitnessGoals are the sports a visitor can pick on the first step.
var FitnessGoals = []string{"gym", "running", "ultra", "swimming", "mma", "sports"}

// Session is one visitor's builder state. Moving between steps never
// clears anything.
type Session struct {
	ID          string
	UserID      string
	Step        Step
	FitnessGoal string
	Targets     models.Targets
	CuisineID   string
	Catalog     []models.Ingredient // ingredients of the chosen cuisine
	Meal        *nutrition.Meal
	Tier        models.Tier
	Plan        models.Plan
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New starts a session on the first step. A zero target takes the builder
// default for that field.
func New(id, userID string, targets models.Targets, now time.Time) *Session {
	defaults := nutrition.DefaultTargets()
	if targets.Calories == 0 {
		targets.Calories = defaults.Calories
	}
	if targets.Protein == 0 {
		targets.Protein = defaults.Protein
	}
	return &Session{
		ID:        id,
		UserID:    userID,
		Step:      StepChooseGoal,
		Targets:   nutrition.ClampTargets(targets),
		Meal:      nutrition.NewMeal(),
		Tier:      models.TierGood,
		Plan:      models.PlanThreeDay,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) ChooseGoal(goal string) error {
	if !slices.Contains(FitnessGoals, goal) {
		return &models.FieldError{Field: "fitness_goal", Message: fmt.Sprintf("unknown goal %q", goal)}
	}
	s.FitnessGoal = goal
	return nil
}

// SetTargets stores t clamped to the builder ranges.
func (s *Session) SetTargets(t models.Targets) {
	s.Targets = nutrition.ClampTargets(t)
}

// ChooseCuisine swaps the ingredient catalog. Ingredients already in the
// meal stay.
func (s *Session) ChooseCuisine(cuisineID string, ingredients []models.Ingredient) {
	s.CuisineID = cuisineID
	s.Catalog = ingredients
}

func (s *Session) lookup(id string) (models.Ingredient, bool) {
	for _, ing := range s.Catalog {
		if ing.ID == id {
			return ing, true
		}
	}
	return models.Ingredient{}, false
}

// AddIngredient adds a catalog ingredient by id.
func (s *Session) AddIngredient(id string) (models.SelectedIngredient, error) {
	ing, ok := s.lookup(id)
	if !ok {
		return models.SelectedIngredient{}, fmt.Errorf("%w: %s", models.ErrUnknownIngredient, id)
	}
	return s.Meal.Add(ing), nil
}

func (s *Session) SetQuantity(id string, grams float64) error {
	if !s.Meal.SetQuantity(id, grams) {
		return fmt.Errorf("%w: %s", models.ErrNotSelected, id)
	}
	return nil
}

func (s *Session) AdjustQuantity(id string, delta float64) error {
	if !s.Meal.Adjust(id, delta) {
		return fmt.Errorf("%w: %s", models.ErrNotSelected, id)
	}
	return nil
}

func (s *Session) ChooseTier(raw string) error {
	tier, err := models.ParseTier(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", err, raw)
	}
	s.Tier = tier
	return nil
}

func (s *Session) ChoosePlan(raw string) error {
	plan, err := models.ParsePlan(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", err, raw)
	}
	s.Plan = plan
	return nil
}

// CanAdvance reports why the current step cannot be left going forward.
func (s *Session) CanAdvance() error {
	switch s.Step {
	case StepChooseGoal:
		if s.FitnessGoal == "" {
			return fmt.Errorf("%w: choose a fitness goal first", models.ErrStepBlocked)
		}
	case StepBuildMeal:
		if s.Meal.Len() == 0 {
			return fmt.Errorf("%w: add at least one ingredient", models.ErrStepBlocked)
		}
	case StepCheckout:
		return fmt.Errorf("%w: already at the last step", models.ErrInvalidStep)
	}
	return nil
}

func (s *Session) Next() error {
	if err := s.CanAdvance(); err != nil {
		return err
	}
	s.Step++
	return nil
}

// GoTo moves to any earlier step, stays put, or advances exactly one step.
func (s *Session) GoTo(target Step) error {
	if !target.valid() {
		return fmt.Errorf("%w: step %d", models.ErrInvalidStep, int(target))
	}
	switch {
	case target <= s.Step:
		s.Step = target
		return nil
	case target == s.Step+1:
		return s.Next()
	default:
		return fmt.Errorf("%w: cannot jump from %s to %s", models.ErrInvalidStep, s.Step, target)
	}
}

// Summary is the builder side panel: totals, progress, suggestions, price.
type Summary struct {
	ID           string                      `json:"id"`
	Step         string                      `json:"step"`
	FitnessGoal  string                      `json:"fitness_goal,omitempty"`
	CuisineID    string                      `json:"cuisine_id,omitempty"`
	Targets      models.Targets              `json:"targets"`
	Items        []models.SelectedIngredient `json:"items"`
	Totals       models.MacroTotals          `json:"totals"`
	Progress     nutrition.Progress          `json:"progress"`
	Suggestions  []nutrition.Suggestion      `json:"suggestions"`
	Message      string                      `json:"message,omitempty"`
	Announcement string                      `json:"announcement,omitempty"`
	Quote        pricing.Quote               `json:"quote"`
}

func (s *Session) Summary() (Summary, error) {
	totals := s.Meal.Totals()
	quote, err := pricing.NewQuote(totals.Cost, s.Tier, s.Plan)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		ID:          s.ID,
		Step:        s.Step.String(),
		FitnessGoal: s.FitnessGoal,
		CuisineID:   s.CuisineID,
		Targets:     s.Targets,
		Items:       s.Meal.Items(),
		Totals:      totals,
		Progress:    nutrition.MealProgress(totals, s.Targets),
		Suggestions: nutrition.Suggest(totals, s.Targets, s.Catalog, s.Meal),
		Quote:       quote,
	}
	if len(sum.Suggestions) == 0 {
		sum.Message = nutrition.OnTrackMessage
	}
	if s.Meal.Len() > 0 {
		sum.Announcement = nutrition.Announcement(totals, s.Targets)
	}
	return sum, nil
}

// UserMeal snapshots the meal for saving.
func (s *Session) UserMeal(id, name, mealType string, now time.Time) models.UserMeal {
	totals := s.Meal.Totals()
	return models.UserMeal{
		ID:            id,
		UserID:        s.UserID,
		Name:          name,
		MealType:      mealType,
		Ingredients:   s.Meal.Items(),
		TotalCalories: totals.Calories,
		TotalProtein:  totals.Protein,
		TotalCarbs:    totals.Carbs,
		TotalFats:     totals.Fats,
		TotalCost:     totals.Cost,
		Tier:          s.Tier,
		CreatedAt:     now,
	}
}
