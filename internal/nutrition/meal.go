// internal/nutrition/meal.go
package nutrition

import (
	"math"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

const (
	// DefaultQuantity is the first-add portion in grams.
	DefaultQuantity = 100.0
	// ReAddIncrement is added when an ingredient already in the meal is added again.
	ReAddIncrement = 50.0
)

// Meal is the meal in progress. Entries keep insertion order and each
// ingredient id appears at most once. The zero value is an empty meal. Meal
// is not safe for concurrent use; callers own one per session.
type Meal struct {
	items []models.SelectedIngredient
}

func NewMeal() *Meal {
	return &Meal{}
}

func (m *Meal) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].Ingredient.ID == id {
			return i
		}
	}
	return -1
}

// Add inserts ing at DefaultQuantity, or bumps an existing entry by
// ReAddIncrement. It returns the resulting entry.
func (m *Meal) Add(ing models.Ingredient) models.SelectedIngredient {
	if i := m.indexOf(ing.ID); i >= 0 {
		m.items[i].Quantity += ReAddIncrement
		return m.items[i]
	}
	entry := models.SelectedIngredient{Ingredient: ing, Quantity: DefaultQuantity}
	m.items = append(m.items, entry)
	return entry
}

// SetQuantity replaces the quantity for id. A quantity <= 0 removes the
// entry. Fractional grams are kept as given. It reports false when id is not
// in the meal.
func (m *Meal) SetQuantity(id string, grams float64) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	if grams <= 0 {
		m.items = append(m.items[:i], m.items[i+1:]...)
		return true
	}
	m.items[i].Quantity = grams
	return true
}

// Adjust moves the quantity for id by delta, flooring at zero (which removes
// the entry).
func (m *Meal) Adjust(id string, delta float64) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	return m.SetQuantity(id, math.Max(0, m.items[i].Quantity+delta))
}

func (m *Meal) Remove(id string) bool {
	return m.SetQuantity(id, 0)
}

func (m *Meal) Contains(id string) bool {
	return m.indexOf(id) >= 0
}

// Quantity returns the grams for id, or 0 when absent.
func (m *Meal) Quantity(id string) float64 {
	if i := m.indexOf(id); i >= 0 {
		return m.items[i].Quantity
	}
	return 0
}

func (m *Meal) Len() int {
	return len(m.items)
}

// Items returns a copy of the entries in insertion order.
func (m *Meal) Items() []models.SelectedIngredient {
	out := make([]models.SelectedIngredient, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Meal) Reset() {
	m.items = nil
}

// Totals recomputes the macro totals from scratch.
func (m *Meal) Totals() models.MacroTotals {
	return Sum(m.items)
}

// Sum totals a list of entries: density * grams / 100 for every macro and
// the cost.
func Sum(items []models.SelectedIngredient) models.MacroTotals {
	var t models.MacroTotals
	for _, item := range items {
		f := item.Quantity / 100
		t.Calories += item.Ingredient.CaloriesPer100g * f
		t.Protein += item.Ingredient.ProteinPer100g * f
		t.Carbs += item.Ingredient.CarbsPer100g * f
		t.Fats += item.Ingredient.FatsPer100g * f
		t.Cost += item.Ingredient.CostPer100g * f
	}
	return t
}
