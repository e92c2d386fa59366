package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

var (
	chicken = models.Ingredient{ID: "chk", Name: "Chicken Breast", Category: models.CategoryProtein,
		CaloriesPer100g: 165, ProteinPer100g: 31, CarbsPer100g: 0, FatsPer100g: 3.6, CostPer100g: 45}
	paneer = models.Ingredient{ID: "pnr", Name: "Paneer", Category: models.CategoryProtein,
		CaloriesPer100g: 265, ProteinPer100g: 18, CarbsPer100g: 1.2, FatsPer100g: 20.8, CostPer100g: 40}
	rice = models.Ingredient{ID: "rice", Name: "Basmati Rice", Category: models.CategoryCarb,
		CaloriesPer100g: 130, ProteinPer100g: 2.7, CarbsPer100g: 28, FatsPer100g: 0.3, CostPer100g: 12}
	ghee = models.Ingredient{ID: "ghee", Name: "Ghee", Category: models.CategoryFat,
		CaloriesPer100g: 900, FatsPer100g: 100, CostPer100g: 60}
)

func TestMeal_AddDefaultsAndMerges(t *testing.T) {
	m := NewMeal()

	first := m.Add(chicken)
	assert.Equal(t, DefaultQuantity, first.Quantity)

	second := m.Add(chicken)
	assert.Equal(t, 150.0, second.Quantity)
	require.Equal(t, 1, m.Len(), "re-adding must merge, not duplicate")

	once := NewMeal()
	once.Add(chicken)
	once.SetQuantity(chicken.ID, 150)
	assert.Equal(t, once.Totals(), m.Totals())
}

func TestMeal_TotalsMatchSum(t *testing.T) {
	m := NewMeal()
	m.Add(chicken)
	m.Add(rice)
	m.Add(ghee)
	m.SetQuantity(rice.ID, 225)
	m.SetQuantity(ghee.ID, 10)

	got := m.Totals()
	assert.InDelta(t, 165+130*2.25+900*0.1, got.Calories, 1e-9)
	assert.InDelta(t, 31+2.7*2.25, got.Protein, 1e-9)
	assert.InDelta(t, 28*2.25, got.Carbs, 1e-9)
	assert.InDelta(t, 3.6+0.3*2.25+10, got.Fats, 1e-9)
	assert.InDelta(t, 45+12*2.25+6, got.Cost, 1e-9)
}

func TestMeal_TotalsIdempotent(t *testing.T) {
	m := NewMeal()
	m.Add(paneer)
	m.Add(rice)
	assert.Equal(t, m.Totals(), m.Totals())
}

func TestMeal_SetQuantityZeroRemoves(t *testing.T) {
	m := NewMeal()
	m.Add(chicken)
	m.Add(rice)

	require.True(t, m.SetQuantity(chicken.ID, 0))
	assert.False(t, m.Contains(chicken.ID))
	assert.Equal(t, 1, m.Len())
	assert.InDelta(t, 130, m.Totals().Calories, 1e-9)

	require.True(t, m.SetQuantity(rice.ID, -20))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, models.MacroTotals{}, m.Totals())
}

func TestMeal_SetQuantityUnknown(t *testing.T) {
	m := NewMeal()
	assert.False(t, m.SetQuantity("nope", 100))
	assert.False(t, m.Adjust("nope", 25))
}

func TestMeal_FractionalQuantityKept(t *testing.T) {
	// Free-form input bypasses the 25 g step; the meal accepts it as given.
	m := NewMeal()
	m.Add(rice)
	m.SetQuantity(rice.ID, 87.5)
	assert.Equal(t, 87.5, m.Quantity(rice.ID))
}

func TestMeal_AdjustFloorsAtZero(t *testing.T) {
	m := NewMeal()
	m.Add(paneer)

	require.True(t, m.Adjust(paneer.ID, 25))
	assert.Equal(t, 125.0, m.Quantity(paneer.ID))

	require.True(t, m.Adjust(paneer.ID, -500))
	assert.False(t, m.Contains(paneer.ID))
}

func TestMeal_ItemsIsACopy(t *testing.T) {
	m := NewMeal()
	m.Add(chicken)
	items := m.Items()
	items[0].Quantity = 999
	assert.Equal(t, DefaultQuantity, m.Quantity(chicken.ID))
}

func TestMeal_ZeroValueUsable(t *testing.T) {
	var m Meal
	m.Add(rice)
	assert.Equal(t, 1, m.Len())
	m.Reset()
	assert.Equal(t, 0, m.Len())
}
