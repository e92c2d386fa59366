package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/catalog"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/dashboard"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/nutrition"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/pricing"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/session"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/storage"
)

func newTestServer(t *testing.T) *KitchenServer {
	t.Helper()
	stor, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "kitchen.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stor.Close() })

	seed, err := storage.DefaultSeed()
	require.NoError(t, err)
	require.NoError(t, stor.Seed(context.Background(), seed))

	srv, err := NewKitchenServer(&Config{Addr: "127.0.0.1:0"}, catalog.New(stor, nil), stor, zap.NewNop())
	require.NoError(t, err)
	return srv
}

type toolResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// call posts a tool request and decodes the text payload into out when the
// call succeeds. It returns the HTTP status.
func call(t *testing.T, srv *KitchenServer, name string, args map[string]interface{}, out interface{}) int {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/tools/call", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || out == nil {
		return rec.Code
	}
	var resp toolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Content, 1)
	assert.Equal(t, "text", resp.Content[0].Type)

	// Reused targets must not keep fields an omitempty response left out.
	v := reflect.ValueOf(out).Elem()
	v.Set(reflect.Zero(v.Type()))
	require.NoError(t, json.Unmarshal([]byte(resp.Content[0].Text), out))
	return rec.Code
}

func TestHealthAndToolList(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Tools, 22)
	assert.Equal(t, "add_ingredient", list.Tools[0].Name)
}

func TestCallTool_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tools/call", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, call(t, srv, "log_meal", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, "session_summary", map[string]interface{}{"session_id": "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "session_summary", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "set_quantity", map[string]interface{}{"session_id": "x", "quantity": "lots"}, nil))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools/call", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEstimateTargets(t *testing.T) {
	srv := newTestServer(t)

	var out struct {
		Daily       nutrition.DailyTargets `json:"daily"`
		MealTargets models.Targets         `json:"meal_targets"`
	}
	status := call(t, srv, "estimate_targets", map[string]interface{}{
		"age": 30, "weight": 70, "height": 175, "gender": "male", "activity_level": "moderate", "goal": "maintain",
	}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 1648.75, out.Daily.BMR, 1e-9)
	assert.Equal(t, 2556, out.Daily.Calories)
	assert.Equal(t, 154, out.Daily.Protein)
	assert.Equal(t, models.Targets{Calories: 1200, Protein: 100}, out.MealTargets)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, "estimate_targets", map[string]interface{}{"age": 30, "weight": 0, "height": 175}, nil))
}

func TestCatalogTools(t *testing.T) {
	srv := newTestServer(t)

	var cuisines []models.Cuisine
	require.Equal(t, http.StatusOK, call(t, srv, "list_cuisines", nil, &cuisines))
	assert.Len(t, cuisines, 3)

	var ings []models.Ingredient
	require.Equal(t, http.StatusOK, call(t, srv, "list_ingredients", map[string]interface{}{"cuisine_id": "indian"}, &ings))
	assert.Len(t, ings, 10)

	require.Equal(t, http.StatusOK, call(t, srv, "list_ingredients", nil, &ings))
	assert.Empty(t, ings)

	var meals []catalog.MenuItem
	require.Equal(t, http.StatusOK, call(t, srv, "list_signature_meals", nil, &meals))
	require.Len(t, meals, 4, "inactive dishes are hidden")
	assert.True(t, meals[0].IsFeatured)
	assert.NotEmpty(t, meals[0].TierLabel)

	names := make(map[string]string, len(cuisines))
	for _, c := range cuisines {
		names[c.ID] = c.Name
	}
	for _, m := range meals {
		require.NotNil(t, m.Cuisine, m.ID)
		assert.Equal(t, m.CuisineID, m.Cuisine.ID)
		assert.Equal(t, names[m.CuisineID], m.Cuisine.Name)
	}
}

func TestBuilderFlow(t *testing.T) {
	srv := newTestServer(t)
	var sum session.Summary

	require.Equal(t, http.StatusOK, call(t, srv, "start_session", map[string]interface{}{"user_id": "u1"}, &sum))
	id := sum.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "choose_goal", sum.Step)
	assert.Equal(t, models.Targets{Calories: 600, Protein: 50}, sum.Targets)

	args := func(kv ...interface{}) map[string]interface{} {
		m := map[string]interface{}{"session_id": id}
		for i := 0; i < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1]
		}
		return m
	}

	assert.Equal(t, http.StatusConflict, call(t, srv, "next_step", args(), nil), "goal required")
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "choose_goal", args("fitness_goal", "chess"), nil))
	require.Equal(t, http.StatusOK, call(t, srv, "choose_goal", args("fitness_goal", "gym"), &sum))
	require.Equal(t, http.StatusOK, call(t, srv, "next_step", args(), &sum))
	assert.Equal(t, "set_targets", sum.Step)

	require.Equal(t, http.StatusOK, call(t, srv, "set_targets", args("target_calories", 5000, "target_protein", 5), &sum))
	assert.Equal(t, models.Targets{Calories: 1200, Protein: 20}, sum.Targets)
	require.Equal(t, http.StatusOK, call(t, srv, "next_step", args(), &sum))
	assert.Equal(t, "build_meal", sum.Step)
	assert.Equal(t, http.StatusConflict, call(t, srv, "next_step", args(), nil), "ingredient required")

	require.Equal(t, http.StatusOK, call(t, srv, "choose_cuisine", args("cuisine_id", "indian"), &sum))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "add_ingredient", args("ingredient_id", "med-salmon"), nil))

	require.Equal(t, http.StatusOK, call(t, srv, "add_ingredient", args("ingredient_id", "ind-chicken-tikka"), &sum))
	require.Len(t, sum.Items, 1)
	assert.Equal(t, 100.0, sum.Items[0].Quantity)
	assert.InDelta(t, 27, sum.Totals.Protein, 1e-9)
	assert.NotEmpty(t, sum.Announcement)

	require.Equal(t, http.StatusOK, call(t, srv, "add_ingredient", args("ingredient_id", "ind-chicken-tikka"), &sum))
	assert.Equal(t, 150.0, sum.Items[0].Quantity)

	require.Equal(t, http.StatusOK, call(t, srv, "adjust_quantity", args("ingredient_id", "ind-chicken-tikka", "delta", -50), &sum))
	assert.Equal(t, 100.0, sum.Items[0].Quantity)

	// Protein is covered, calories are far off: a carb pick.
	require.Len(t, sum.Suggestions, 1)
	assert.Equal(t, nutrition.SuggestCarb, sum.Suggestions[0].Kind)
	assert.Empty(t, sum.Message)

	require.Equal(t, http.StatusOK, call(t, srv, "set_quantity", args("ingredient_id", "ind-chicken-tikka", "quantity", 0), &sum))
	assert.Empty(t, sum.Items)
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "set_quantity", args("ingredient_id", "ind-chicken-tikka", "quantity", 10), nil))

	require.Equal(t, http.StatusOK, call(t, srv, "add_ingredient", args("ingredient_id", "ind-chicken-tikka"), &sum))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "choose_tier", args("tier", "platinum"), nil))
	require.Equal(t, http.StatusOK, call(t, srv, "choose_tier", args("tier", "gourmet"), &sum))
	require.Equal(t, http.StatusOK, call(t, srv, "choose_plan", args("plan", "monthly"), &sum))
	assert.InDelta(t, 195, sum.Quote.PricePerMeal, 1e-9)
	assert.InDelta(t, 165.75, sum.Quote.DiscountedPrice, 1e-9)

	require.Equal(t, http.StatusOK, call(t, srv, "next_step", args(), &sum))
	assert.Equal(t, "checkout", sum.Step)
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "next_step", args(), nil))

	require.Equal(t, http.StatusOK, call(t, srv, "go_to_step", args("step", 1), &sum))
	assert.Equal(t, "choose_goal", sum.Step)
	assert.Len(t, sum.Items, 1, "going back keeps the meal")
	assert.Equal(t, "gym", sum.FitnessGoal)
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "go_to_step", args("step", 4), nil))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, "go_to_step", args("step", 9), nil))

	var saved models.UserMeal
	require.Equal(t, http.StatusOK, call(t, srv, "save_meal", args("name", "Post-workout", "meal_type", "lunch"), &saved))
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, models.TierGourmet, saved.Tier)

	var meals []models.UserMeal
	require.Equal(t, http.StatusOK, call(t, srv, "get_meals", map[string]interface{}{"user_id": "u1"}, &meals))
	require.Len(t, meals, 1)
	assert.Equal(t, "Post-workout", meals[0].Name)
}

func TestStartSession_UnknownGoalLeavesNoSession(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, "start_session", map[string]interface{}{"fitness_goal": "yoga"}, nil))
	assert.Equal(t, 0, srv.sessions.Len())

	var sum session.Summary
	require.Equal(t, http.StatusOK, call(t, srv, "start_session", map[string]interface{}{"fitness_goal": "running"}, &sum))
	assert.Equal(t, "running", sum.FitnessGoal)
	assert.Equal(t, 1, srv.sessions.Len())
}

func TestStartSession_PartialTargets(t *testing.T) {
	srv := newTestServer(t)

	var sum session.Summary
	require.Equal(t, http.StatusOK, call(t, srv, "start_session", map[string]interface{}{"target_calories": 800}, &sum))
	assert.Equal(t, models.Targets{Calories: 800, Protein: 50}, sum.Targets)
}

func TestQuantity_OutOfRangeRejected(t *testing.T) {
	srv := newTestServer(t)

	var sum session.Summary
	require.Equal(t, http.StatusOK, call(t, srv, "start_session", nil, &sum))
	id := sum.ID
	require.Equal(t, http.StatusOK, call(t, srv, "choose_cuisine", map[string]interface{}{"session_id": id, "cuisine_id": "indian"}, &sum))
	require.Equal(t, http.StatusOK, call(t, srv, "add_ingredient", map[string]interface{}{"session_id": id, "ingredient_id": "ind-chicken-tikka"}, &sum))

	tests := []struct {
		tool string
		args map[string]interface{}
	}{
		{"set_quantity", map[string]interface{}{"quantity": 1.7e308}},
		{"set_quantity", map[string]interface{}{"quantity": -20000}},
		{"adjust_quantity", map[string]interface{}{"delta": 1e300}},
		{"adjust_quantity", map[string]interface{}{"delta": -1e300}},
	}
	for _, tt := range tests {
		tt.args["session_id"] = id
		tt.args["ingredient_id"] = "ind-chicken-tikka"
		assert.Equal(t, http.StatusBadRequest, call(t, srv, tt.tool, tt.args, nil), "%s %v", tt.tool, tt.args)
	}

	require.Equal(t, http.StatusOK, call(t, srv, "session_summary", map[string]interface{}{"session_id": id}, &sum))
	require.Len(t, sum.Items, 1)
	assert.Equal(t, 100.0, sum.Items[0].Quantity)

	require.Equal(t, http.StatusOK, call(t, srv, "set_quantity", map[string]interface{}{"session_id": id, "ingredient_id": "ind-chicken-tikka", "quantity": 10000}, &sum))
	assert.Equal(t, 10000.0, sum.Items[0].Quantity)
	require.Equal(t, http.StatusOK, call(t, srv, "choose_tier", map[string]interface{}{"session_id": id, "tier": "gourmet"}, &sum))
}

func TestSaveMeal_RequiresUser(t *testing.T) {
	srv := newTestServer(t)
	var sum session.Summary
	require.Equal(t, http.StatusOK, call(t, srv, "start_session", map[string]interface{}{"fitness_goal": "running"}, &sum))
	assert.Equal(t, "running", sum.FitnessGoal)
	assert.Equal(t, nutrition.OnTrackMessage, sum.Message, "no cuisine chosen, nothing to suggest")

	assert.Equal(t, http.StatusBadRequest, call(t, srv, "save_meal", map[string]interface{}{"session_id": sum.ID}, nil))
}

func TestQuotePrice(t *testing.T) {
	srv := newTestServer(t)

	var q pricing.Quote
	require.Equal(t, http.StatusOK, call(t, srv, "quote_price", map[string]interface{}{"ingredient_cost": 200}, &q))
	assert.Equal(t, models.TierGood, q.Tier)
	assert.Equal(t, models.PlanThreeDay, q.Plan)
	assert.InDelta(t, 290, q.DiscountedPrice, 1e-9)

	require.Equal(t, http.StatusOK, call(t, srv, "quote_price", map[string]interface{}{"ingredient_cost": 200, "plan": "weekly"}, &q))
	assert.InDelta(t, 275.5, q.DiscountedPrice, 1e-9)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, "quote_price", map[string]interface{}{"ingredient_cost": 200, "plan": "yearly"}, nil))
}

func TestProfileStatsAndDashboard(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, "save_profile", map[string]interface{}{"user_id": "u1", "full_name": "A"}, nil))

	var profile models.UserProfile
	require.Equal(t, http.StatusOK, call(t, srv, "save_profile", map[string]interface{}{
		"user_id": "u1", "full_name": "Asha Rao", "age": 30, "weight": 70, "height": 175,
		"gender": "male", "activity_level": "moderate", "fitness_goal": "gym",
	}, &profile))
	assert.Equal(t, 2556, profile.DailyCalories, "estimated when missing")
	assert.Equal(t, 154, profile.DailyProtein)

	var dash dashboard.Summary
	require.Equal(t, http.StatusOK, call(t, srv, "get_dashboard", map[string]interface{}{"user_id": "u1"}, &dash))
	assert.Zero(t, dash.NetCalories)
	assert.Equal(t, 2556, dash.DailyCalories)

	var stats models.UserStats
	require.Equal(t, http.StatusOK, call(t, srv, "log_daily_stats", map[string]interface{}{
		"user_id": "u1", "calories_consumed": 3000, "calories_burned": 500,
	}, &stats))
	assert.Equal(t, 3000.0, stats.CaloriesConsumed)

	require.Equal(t, http.StatusOK, call(t, srv, "get_dashboard", map[string]interface{}{"user_id": "u1"}, &dash))
	assert.Equal(t, 2500.0, dash.NetCalories)
	assert.Equal(t, 100.0, dash.CalorieProgress)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, "log_daily_stats", map[string]interface{}{"user_id": "u1", "date": "01/05/2024"}, nil))

	require.Equal(t, http.StatusOK, call(t, srv, "get_dashboard", map[string]interface{}{"user_id": "stranger"}, &dash))
	assert.Equal(t, 2000, dash.DailyCalories)
	assert.Equal(t, 150, dash.DailyProtein)
}

func TestSaveMeal_SanitizesText(t *testing.T) {
	srv := newTestServer(t)
	n := 0
	srv.newID = func() string { n++; return fmt.Sprintf("meal-%d", n) }

	var sum session.Summary
	require.Equal(t, http.StatusOK, call(t, srv, "start_session", map[string]interface{}{"user_id": "u1"}, &sum))
	id := sum.ID
	require.Equal(t, http.StatusOK, call(t, srv, "choose_cuisine", map[string]interface{}{"session_id": id, "cuisine_id": "asian"}, &sum))
	require.Equal(t, http.StatusOK, call(t, srv, "add_ingredient", map[string]interface{}{"session_id": id, "ingredient_id": "asn-tofu"}, &sum))

	var saved models.UserMeal
	require.Equal(t, http.StatusOK, call(t, srv, "save_meal", map[string]interface{}{
		"session_id": id, "name": "<script>alert(1)</script>Tofu & Rice ",
	}, &saved))
	assert.Equal(t, "meal-1", saved.ID)
	assert.Equal(t, "Tofu & Rice", saved.Name)

	require.Equal(t, http.StatusOK, call(t, srv, "save_meal", map[string]interface{}{"session_id": id, "name": "<b></b>"}, &saved))
	assert.Equal(t, "Custom Meal", saved.Name)
}

func TestPruneSessions_StopsWithContext(t *testing.T) {
	srv := newTestServer(t)
	srv.config.SessionIdleTTL = 40 * time.Millisecond
	ignore := goleak.IgnoreCurrent()

	srv.sessions.Create("u1", models.Targets{})
	ctx, cancel := context.WithCancel(context.Background())
	go srv.pruneSessions(ctx)

	require.Eventually(t, func() bool { return srv.sessions.Len() == 0 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	goleak.VerifyNone(t, ignore)
}

func TestPruneInterval(t *testing.T) {
	assert.Equal(t, 30*time.Minute, pruneInterval(2*time.Hour))
	assert.Equal(t, time.Second, pruneInterval(40*time.Millisecond))
	assert.Equal(t, time.Second, pruneInterval(time.Nanosecond))
}
