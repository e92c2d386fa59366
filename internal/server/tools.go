// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/microcosm-cc/bluemonday"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/nutrition"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/pricing"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/session"
)

const defaultMealsLimit = 20

type EstimateTargetsParams struct {
	Age      float64 `json:"age" description:"Age in years"`
	Weight   float64 `json:"weight" description:"Body weight in kg"`
	Height   float64 `json:"height" description:"Height in cm"`
	Gender   string  `json:"gender" description:"male or female"`
	Activity string  `json:"activity_level" description:"sedentary, light, moderate, active or very_active"`
	Goal     string  `json:"goal" description:"lose, maintain or gain"`
}

type ListIngredientsParams struct {
	CuisineID string `json:"cuisine_id" description:"Cuisine whose ingredients to list"`
}

type StartSessionParams struct {
	UserID         string  `json:"user_id,omitempty" description:"Signed-in user, needed to save the meal later"`
	FitnessGoal    string  `json:"fitness_goal,omitempty" description:"Optional goal to preselect"`
	TargetCalories float64 `json:"target_calories,omitempty" description:"Per-meal calorie target (defaults to 600)"`
	TargetProtein  float64 `json:"target_protein,omitempty" description:"Per-meal protein target in g (defaults to 50)"`
}

type SessionParams struct {
	SessionID string `json:"session_id" description:"Builder session id"`
}

type ChooseGoalParams struct {
	SessionID   string `json:"session_id"`
	FitnessGoal string `json:"fitness_goal" description:"gym, running, ultra, swimming, mma or sports"`
}

type SetTargetsParams struct {
	SessionID      string  `json:"session_id"`
	TargetCalories float64 `json:"target_calories" description:"Clamped to 300-1200"`
	TargetProtein  float64 `json:"target_protein" description:"Clamped to 20-100"`
}

type ChooseCuisineParams struct {
	SessionID string `json:"session_id"`
	CuisineID string `json:"cuisine_id"`
}

type IngredientParams struct {
	SessionID    string `json:"session_id"`
	IngredientID string `json:"ingredient_id"`
}

type SetQuantityParams struct {
	SessionID    string  `json:"session_id"`
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity" description:"Grams; zero or less removes the ingredient"`
}

type AdjustQuantityParams struct {
	SessionID    string  `json:"session_id"`
	IngredientID string  `json:"ingredient_id"`
	Delta        float64 `json:"delta" description:"Grams to add (negative to reduce); floors at zero"`
}

type ChooseTierParams struct {
	SessionID string `json:"session_id"`
	Tier      string `json:"tier" description:"basic, good or gourmet"`
}

type ChoosePlanParams struct {
	SessionID string `json:"session_id"`
	Plan      string `json:"plan" description:"3-day, weekly or monthly"`
}

type GoToStepParams struct {
	SessionID string `json:"session_id"`
	Step      int    `json:"step" description:"1 choose goal, 2 set targets, 3 build meal, 4 checkout"`
}

type QuotePriceParams struct {
	IngredientCost float64 `json:"ingredient_cost" description:"Ingredient cost of one meal"`
	Tier           string  `json:"tier,omitempty"`
	Plan           string  `json:"plan,omitempty"`
}

type SaveMealParams struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty" description:"Display name (defaults to Custom Meal)"`
	MealType  string `json:"meal_type,omitempty" description:"breakfast, lunch, dinner or snack"`
}

type GetMealsParams struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

type SaveProfileParams struct {
	UserID        string  `json:"user_id"`
	FullName      string  `json:"full_name,omitempty"`
	Age           float64 `json:"age,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Gender        string  `json:"gender,omitempty" description:"Only used to estimate missing daily targets"`
	ActivityLevel string  `json:"activity_level,omitempty"`
	FitnessGoal   string  `json:"fitness_goal,omitempty"`
	DailyCalories int     `json:"daily_calories,omitempty"`
	DailyProtein  int     `json:"daily_protein,omitempty"`
}

type LogDailyStatsParams struct {
	UserID           string  `json:"user_id"`
	Date             string  `json:"date,omitempty" description:"YYYY-MM-DD (defaults to today, UTC)"`
	CaloriesConsumed float64 `json:"calories_consumed"`
	CaloriesBurned   float64 `json:"calories_burned"`
	CurrentWeight    float64 `json:"current_weight,omitempty"`
	StrengthIndex    float64 `json:"strength_index,omitempty"`
}

type UserParams struct {
	UserID string `json:"user_id"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	return nil
}

// textPolicy strips markup from free text that is stored and shown back.
var textPolicy = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func required(field, value string) error {
	if value == "" {
		return &models.FieldError{Field: field, Message: "This field is required"}
	}
	return nil
}

// maxQuantityGrams bounds a single quantity or adjustment.
const maxQuantityGrams = 10000

func grams(field string, v float64) error {
	if math.IsNaN(v) || math.Abs(v) > maxQuantityGrams {
		return &models.FieldError{Field: field, Message: fmt.Sprintf("must be within ±%d grams", maxQuantityGrams)}
	}
	return nil
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &models.FieldError{Field: field, Message: "must be a positive number"}
	}
	return nil
}

// handleEstimateTargets runs the calculator and returns daily goals plus
// the per-meal targets the builder would start from.
func (s *KitchenServer) handleEstimateTargets(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateTargetsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := positive("age", params.Age); err != nil {
		return nil, err
	}
	if err := positive("weight", params.Weight); err != nil {
		return nil, err
	}
	if err := positive("height", params.Height); err != nil {
		return nil, err
	}

	daily := nutrition.EstimateTargets(nutrition.Biometrics{
		Age:      params.Age,
		WeightKg: params.Weight,
		HeightCm: params.Height,
		Gender:   nutrition.Gender(params.Gender),
		Activity: nutrition.ActivityLevel(params.Activity),
		Goal:     nutrition.Goal(params.Goal),
	})

	return s.createJSONResponse(map[string]interface{}{
		"daily":        daily,
		"meal_targets": nutrition.TargetsFromDaily(daily),
	})
}

func (s *KitchenServer) handleListCuisines(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.catalog.Cuisines(ctx))
}

func (s *KitchenServer) handleListIngredients(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListIngredientsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.createJSONResponse(s.catalog.Ingredients(ctx, params.CuisineID))
}

// handleListSignatureMeals returns the active menu with each dish's cuisine.
func (s *KitchenServer) handleListSignatureMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.catalog.Menu(ctx))
}

func (s *KitchenServer) handleStartSession(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params StartSessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	if params.FitnessGoal != "" && !slices.Contains(session.FitnessGoals, params.FitnessGoal) {
		return nil, &models.FieldError{Field: "fitness_goal", Message: fmt.Sprintf("unknown goal %q", params.FitnessGoal)}
	}

	id := s.sessions.Create(params.UserID, models.Targets{Calories: params.TargetCalories, Protein: params.TargetProtein})
	if params.FitnessGoal == "" {
		return s.sessionSummary(id)
	}
	return s.updateSession(id, func(sess *session.Session) error {
		return sess.ChooseGoal(params.FitnessGoal)
	})
}

func (s *KitchenServer) handleChooseGoal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ChooseGoalParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.ChooseGoal(params.FitnessGoal)
	})
}

func (s *KitchenServer) handleSetTargets(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SetTargetsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		sess.SetTargets(models.Targets{Calories: params.TargetCalories, Protein: params.TargetProtein})
		return nil
	})
}

// handleChooseCuisine loads the cuisine's ingredients before taking the
// session lock. An unavailable catalog leaves an empty ingredient list.
func (s *KitchenServer) handleChooseCuisine(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ChooseCuisineParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := required("cuisine_id", params.CuisineID); err != nil {
		return nil, err
	}

	ingredients := s.catalog.Ingredients(ctx, params.CuisineID)
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		sess.ChooseCuisine(params.CuisineID, ingredients)
		return nil
	})
}

func (s *KitchenServer) handleAddIngredient(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params IngredientParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		_, err := sess.AddIngredient(params.IngredientID)
		return err
	})
}

func (s *KitchenServer) handleSetQuantity(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SetQuantityParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := grams("quantity", params.Quantity); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.SetQuantity(params.IngredientID, params.Quantity)
	})
}

func (s *KitchenServer) handleAdjustQuantity(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AdjustQuantityParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := grams("delta", params.Delta); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.AdjustQuantity(params.IngredientID, params.Delta)
	})
}

func (s *KitchenServer) handleChooseTier(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ChooseTierParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.ChooseTier(params.Tier)
	})
}

func (s *KitchenServer) handleChoosePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ChoosePlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.ChoosePlan(params.Plan)
	})
}

func (s *KitchenServer) handleGoToStep(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GoToStepParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.GoTo(session.Step(params.Step))
	})
}

func (s *KitchenServer) handleNextStep(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.updateSession(params.SessionID, func(sess *session.Session) error {
		return sess.Next()
	})
}

func (s *KitchenServer) handleSessionSummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.sessionSummary(params.SessionID)
}

func (s *KitchenServer) handleQuotePrice(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params QuotePriceParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	tier, err := models.ParseTier(params.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, params.Tier)
	}
	plan, err := models.ParsePlan(params.Plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, params.Plan)
	}

	quote, err := pricing.NewQuote(params.IngredientCost, tier, plan)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(quote)
}

// handleSaveMeal snapshots the session's meal into the user's history.
func (s *KitchenServer) handleSaveMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SaveMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	params.Name = sanitizeText(params.Name)
	params.MealType = sanitizeText(params.MealType)
	if params.Name == "" {
		params.Name = "Custom Meal"
	}

	var meal models.UserMeal
	err := s.sessions.View(params.SessionID, func(sess *session.Session) error {
		if sess.UserID == "" {
			return &models.FieldError{Field: "user_id", Message: "sign in to save meals"}
		}
		if sess.Meal.Len() == 0 {
			return fmt.Errorf("%w: add at least one ingredient", models.ErrStepBlocked)
		}
		meal = sess.UserMeal(s.newID(), params.Name, params.MealType, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.storage.SaveUserMeal(ctx, &meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}
	return s.createJSONResponse(meal)
}

func (s *KitchenServer) handleGetMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := required("user_id", params.UserID); err != nil {
		return nil, err
	}

	// Set defaults
	if params.Limit <= 0 {
		params.Limit = defaultMealsLimit
	}

	meals, err := s.storage.ListUserMeals(ctx, params.UserID, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}
	if meals == nil {
		meals = []*models.UserMeal{}
	}
	return s.createJSONResponse(meals)
}

// handleSaveProfile upserts the profile. Missing daily targets are filled
// in from the calculator when the biometrics allow it.
func (s *KitchenServer) handleSaveProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SaveProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	now := s.now()
	profile := &models.UserProfile{
		ID:            params.UserID,
		FullName:      sanitizeText(params.FullName),
		Age:           params.Age,
		Weight:        params.Weight,
		Height:        params.Height,
		ActivityLevel: params.ActivityLevel,
		FitnessGoal:   params.FitnessGoal,
		DailyCalories: params.DailyCalories,
		DailyProtein:  params.DailyProtein,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.storage.GetProfile(ctx, profile.ID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if (profile.DailyCalories == 0 || profile.DailyProtein == 0) && profile.Age > 0 && profile.Weight > 0 && profile.Height > 0 {
		daily := nutrition.EstimateTargets(nutrition.Biometrics{
			Age:      profile.Age,
			WeightKg: profile.Weight,
			HeightCm: profile.Height,
			Gender:   nutrition.Gender(params.Gender),
			Activity: nutrition.ActivityLevel(profile.ActivityLevel),
			Goal:     nutrition.GoalMaintain,
		})
		if profile.DailyCalories == 0 {
			profile.DailyCalories = daily.Calories
		}
		if profile.DailyProtein == 0 {
			profile.DailyProtein = daily.Protein
		}
	}

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.createJSONResponse(profile)
}

func (s *KitchenServer) handleLogDailyStats(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogDailyStatsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := required("user_id", params.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	if params.Date == "" {
		params.Date = now.UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", params.Date); err != nil {
		return nil, &models.FieldError{Field: "date", Message: "use YYYY-MM-DD"}
	}

	stats := &models.UserStats{
		ID:               s.newID(),
		UserID:           params.UserID,
		Date:             params.Date,
		CaloriesConsumed: params.CaloriesConsumed,
		CaloriesBurned:   params.CaloriesBurned,
		CurrentWeight:    params.CurrentWeight,
		StrengthIndex:    params.StrengthIndex,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.storage.SaveDailyStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save daily stats: %w", err)
	}

	saved, err := s.storage.GetDailyStats(ctx, stats.UserID, stats.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to reload daily stats: %w", err)
	}
	return s.createJSONResponse(saved)
}

func (s *KitchenServer) handleGetDashboard(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params UserParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	summary, err := s.dashboard.Today(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(summary)
}

// updateSession applies fn and computes the summary under the same lock.
func (s *KitchenServer) updateSession(id string, fn func(*session.Session) error) (*protocol.CallToolResult, error) {
	if err := required("session_id", id); err != nil {
		return nil, err
	}
	var sum session.Summary
	err := s.sessions.Update(id, func(sess *session.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		var err error
		sum, err = sess.Summary()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(sum)
}

func (s *KitchenServer) sessionSummary(id string) (*protocol.CallToolResult, error) {
	if err := required("session_id", id); err != nil {
		return nil, err
	}
	var sum session.Summary
	err := s.sessions.View(id, func(sess *session.Session) error {
		var err error
		sum, err = sess.Summary()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(sum)
}

func (s *KitchenServer) registerTools() error {
	defs := []tool{
		{Name: "estimate_targets", Description: "Estimate daily calorie and protein targets from biometrics", handler: s.handleEstimateTargets},
		{Name: "list_cuisines", Description: "List available cuisines", handler: s.handleListCuisines},
		{Name: "list_ingredients", Description: "List the ingredients of a cuisine", handler: s.handleListIngredients},
		{Name: "list_signature_meals", Description: "List active chef signature meals, featured first", handler: s.handleListSignatureMeals},
		{Name: "start_session", Description: "Start a meal builder session", handler: s.handleStartSession},
		{Name: "choose_goal", Description: "Pick the fitness goal for a session", handler: s.handleChooseGoal},
		{Name: "set_targets", Description: "Set per-meal calorie and protein targets", handler: s.handleSetTargets},
		{Name: "choose_cuisine", Description: "Switch the cuisine whose ingredients can be added", handler: s.handleChooseCuisine},
		{Name: "add_ingredient", Description: "Add an ingredient (100g, or 50g more if already present)", handler: s.handleAddIngredient},
		{Name: "set_quantity", Description: "Set an ingredient's grams; zero removes it", handler: s.handleSetQuantity},
		{Name: "adjust_quantity", Description: "Change an ingredient's grams by a delta", handler: s.handleAdjustQuantity},
		{Name: "choose_tier", Description: "Choose the preparation tier", handler: s.handleChooseTier},
		{Name: "choose_plan", Description: "Choose the delivery plan", handler: s.handleChoosePlan},
		{Name: "go_to_step", Description: "Jump back to an earlier step or forward by one", handler: s.handleGoToStep},
		{Name: "next_step", Description: "Advance to the next builder step", handler: s.handleNextStep},
		{Name: "session_summary", Description: "Totals, progress, suggestions and price for a session", handler: s.handleSessionSummary},
		{Name: "quote_price", Description: "Price a meal from its ingredient cost, tier and plan", handler: s.handleQuotePrice},
		{Name: "save_meal", Description: "Save the session's meal to the user's history", handler: s.handleSaveMeal},
		{Name: "get_meals", Description: "List a user's saved meals, newest first", handler: s.handleGetMeals},
		{Name: "save_profile", Description: "Create or update a user profile", handler: s.handleSaveProfile},
		{Name: "log_daily_stats", Description: "Record calories consumed and burned for a day", handler: s.handleLogDailyStats},
		{Name: "get_dashboard", Description: "Today's overview for a user", handler: s.handleGetDashboard},
	}

	s.tools = make(map[string]tool, len(defs))
	for _, t := range defs {
		if _, dup := s.tools[t.Name]; dup {
			return fmt.Errorf("duplicate tool %q", t.Name)
		}
		s.tools[t.Name] = t
	}
	return nil
}
