package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/catalog"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresSettings(t *testing.T) {
	_, err := NewClient(Options{APIKey: "k"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = NewClient(Options{BaseURL: "http://example.test"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestListIngredients(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/ingredients", r.URL.Path)
		assert.Equal(t, "eq.indian", r.URL.Query().Get("cuisine_id"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"pnr","name":"Paneer","cuisine_id":"indian","category":"protein",
			 "calories_per_100g":265,"protein_per_100g":18,"carbs_per_100g":1.2,"fats_per_100g":20.8,"cost_per_100g":40},
			{"id":"odd","name":"Unmeasured","cuisine_id":"indian","category":"other",
			 "calories_per_100g":null,"protein_per_100g":null,"carbs_per_100g":null,"fats_per_100g":null,"cost_per_100g":null}
		]`))
	})

	got, err := c.ListIngredients(context.Background(), "indian")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.CategoryProtein, got[0].Category)
	assert.Equal(t, 18.0, got[0].ProteinPer100g)
	assert.Zero(t, got[1].CaloriesPer100g)
}

func TestListSignatureMeals_NullDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.true", r.URL.Query().Get("is_active"))
		assert.Equal(t, "is_featured.desc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":"s1","name":"Bowl","total_calories":null,"tier":null,"is_featured":null,"is_active":null}]`))
	})

	got, err := c.ListSignatureMeals(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].TotalCalories)
	assert.False(t, got[0].IsFeatured)
	assert.True(t, got[0].IsActive)
}

func TestErrorStatusDegradesToEmptyCatalog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	})

	_, err := c.ListCuisines(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	cat := catalog.New(c, nil)
	assert.Empty(t, cat.Cuisines(context.Background()))
}
