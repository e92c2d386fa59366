package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "kitchen.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeed_DefaultCatalog(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	seed, err := DefaultSeed()
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, seed))
	require.NoError(t, s.Seed(ctx, seed), "seeding twice is harmless")

	cuisines, err := s.ListCuisines(ctx)
	require.NoError(t, err)
	require.Len(t, cuisines, 3)
	assert.Equal(t, "Indian", cuisines[0].Name)

	ings, err := s.ListIngredients(ctx, "indian")
	require.NoError(t, err)
	require.Len(t, ings, 10)
	assert.Equal(t, "ind-chicken-tikka", ings[0].ID, "catalog order is preserved")
	assert.Equal(t, models.CategoryProtein, ings[0].Category)
	assert.Equal(t, "indian", ings[0].CuisineID)

	meals, err := s.ListSignatureMeals(ctx)
	require.NoError(t, err)
	assert.Len(t, meals, 5)
}

func TestParseSeed_RequiresCuisineID(t *testing.T) {
	_, err := ParseSeed([]byte("cuisines:\n  - name: Nameless\n"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSignatureMeals_NullsReadAsZero(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO signature_meals (id, name) VALUES ('bare', 'Bare Bowl')`)
	require.NoError(t, err)

	meals, err := s.ListSignatureMeals(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Zero(t, meals[0].TotalCalories)
	assert.Zero(t, meals[0].BasePrice)
	assert.True(t, meals[0].IsActive)
	assert.Equal(t, "Good", meals[0].TierLabel())
}

func TestProfile_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetProfile(ctx, "u1")
	require.ErrorIs(t, err, models.ErrNotFound)

	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	p := &models.UserProfile{
		ID: "u1", FullName: "Asha Rao", Age: 29, Weight: 62, Height: 168,
		ActivityLevel: "active", FitnessGoal: "running", DailyCalories: 2200, DailyProtein: 136,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.SaveProfile(ctx, p))

	p.DailyCalories = 2300
	p.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2300, got.DailyCalories)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.True(t, got.UpdatedAt.Equal(now.Add(time.Hour)))
}

func TestUserMeals_NewestFirstWithLimit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, name := range []string{"breakfast", "lunch", "dinner"} {
		m := &models.UserMeal{
			ID: name, UserID: "u1", Name: name, MealType: name,
			Ingredients: []models.SelectedIngredient{{
				Ingredient: models.Ingredient{ID: "ind-basmati", Name: "Basmati Rice", Category: models.CategoryCarb, CaloriesPer100g: 130},
				Quantity:   150,
			}},
			TotalCalories: 195, Tier: models.TierGood,
			CreatedAt: base.Add(time.Duration(i) * 4 * time.Hour),
		}
		require.NoError(t, s.SaveUserMeal(ctx, m))
	}
	require.NoError(t, s.SaveUserMeal(ctx, &models.UserMeal{ID: "other", UserID: "u2", Name: "x", Tier: models.TierBasic, CreatedAt: base}))

	meals, err := s.ListUserMeals(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "dinner", meals[0].ID)
	assert.Equal(t, "lunch", meals[1].ID)
	require.Len(t, meals[0].Ingredients, 1)
	assert.Equal(t, 150.0, meals[0].Ingredients[0].Quantity)
	assert.Equal(t, models.TierGood, meals[0].Tier)
}

func TestDailyStats_UpsertPerDay(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	_, err := s.GetDailyStats(ctx, "u1", "2024-05-01")
	require.ErrorIs(t, err, models.ErrNotFound)

	st := &models.UserStats{ID: "st1", UserID: "u1", Date: "2024-05-01", CaloriesConsumed: 1800, CaloriesBurned: 400, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.SaveDailyStats(ctx, st))

	st2 := &models.UserStats{ID: "st2", UserID: "u1", Date: "2024-05-01", CaloriesConsumed: 2100, CaloriesBurned: 550, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.SaveDailyStats(ctx, st2))

	got, err := s.GetDailyStats(ctx, "u1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "st1", got.ID)
	assert.Equal(t, 2100.0, got.CaloriesConsumed)
	assert.Equal(t, 550.0, got.CaloriesBurned)
}
