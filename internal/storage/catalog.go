// internal/storage/catalog.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/catalog"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

// Compile-time interface check.
var _ catalog.Source = (*SQLiteStorage)(nil)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStorage) UpsertCuisine(ctx context.Context, c models.Cuisine) error {
	return upsertCuisine(ctx, s.db, c)
}

func upsertCuisine(ctx context.Context, ex execer, c models.Cuisine) error {
	query := `
        INSERT INTO cuisines (id, name, description) VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description
    `
	if _, err := ex.ExecContext(ctx, query, c.ID, c.Name, c.Description); err != nil {
		return fmt.Errorf("failed to upsert cuisine %s: %w", c.ID, err)
	}
	return nil
}

// UpsertIngredient stores ing at the given catalog position. Position is the
// tie-break order for suggestions.
func (s *SQLiteStorage) UpsertIngredient(ctx context.Context, ing models.Ingredient, position int) error {
	return upsertIngredient(ctx, s.db, ing, position)
}

func upsertIngredient(ctx context.Context, ex execer, ing models.Ingredient, position int) error {
	query := `
        INSERT INTO ingredients (id, cuisine_id, name, category, calories_per_100g, protein_per_100g,
            carbs_per_100g, fats_per_100g, cost_per_100g, position)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            cuisine_id = excluded.cuisine_id,
            name = excluded.name,
            category = excluded.category,
            calories_per_100g = excluded.calories_per_100g,
            protein_per_100g = excluded.protein_per_100g,
            carbs_per_100g = excluded.carbs_per_100g,
            fats_per_100g = excluded.fats_per_100g,
            cost_per_100g = excluded.cost_per_100g,
            position = excluded.position
    `
	_, err := ex.ExecContext(ctx, query,
		ing.ID, ing.CuisineID, ing.Name, string(ing.Category), ing.CaloriesPer100g, ing.ProteinPer100g,
		ing.CarbsPer100g, ing.FatsPer100g, ing.CostPer100g, position)
	if err != nil {
		return fmt.Errorf("failed to upsert ingredient %s: %w", ing.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertSignatureMeal(ctx context.Context, m models.SignatureMeal) error {
	return upsertSignatureMeal(ctx, s.db, m)
}

func upsertSignatureMeal(ctx context.Context, ex execer, m models.SignatureMeal) error {
	query := `
        INSERT INTO signature_meals (id, name, description, cuisine_id, image_url, total_calories, total_protein,
            total_carbs, total_fats, base_price, tier, chef_notes, is_featured, is_active)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            description = excluded.description,
            cuisine_id = excluded.cuisine_id,
            image_url = excluded.image_url,
            total_calories = excluded.total_calories,
            total_protein = excluded.total_protein,
            total_carbs = excluded.total_carbs,
            total_fats = excluded.total_fats,
            base_price = excluded.base_price,
            tier = excluded.tier,
            chef_notes = excluded.chef_notes,
            is_featured = excluded.is_featured,
            is_active = excluded.is_active
    `
	_, err := ex.ExecContext(ctx, query,
		m.ID, m.Name, m.Description, m.CuisineID, m.ImageURL, m.TotalCalories, m.TotalProtein,
		m.TotalCarbs, m.TotalFats, m.BasePrice, m.Tier, m.ChefNotes, m.IsFeatured, m.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert signature meal %s: %w", m.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) ListCuisines(ctx context.Context) ([]models.Cuisine, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM cuisines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cuisines: %w", err)
	}
	defer rows.Close()

	var cuisines []models.Cuisine
	for rows.Next() {
		var c models.Cuisine
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan cuisine: %w", err)
		}
		cuisines = append(cuisines, c)
	}
	return cuisines, rows.Err()
}

func (s *SQLiteStorage) ListIngredients(ctx context.Context, cuisineID string) ([]models.Ingredient, error) {
	query := `
        SELECT id, cuisine_id, name, category, calories_per_100g, protein_per_100g,
            carbs_per_100g, fats_per_100g, cost_per_100g
        FROM ingredients
        WHERE cuisine_id = ?
        ORDER BY position, id
    `
	rows, err := s.db.QueryContext(ctx, query, cuisineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []models.Ingredient
	for rows.Next() {
		var ing models.Ingredient
		var category string
		err := rows.Scan(&ing.ID, &ing.CuisineID, &ing.Name, &category, &ing.CaloriesPer100g,
			&ing.ProteinPer100g, &ing.CarbsPer100g, &ing.FatsPer100g, &ing.CostPer100g)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ing.Category = models.Category(category)
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

// ListSignatureMeals returns every stored dish. Null numeric columns read
// as zero; filtering and ordering for display is the catalog's job.
func (s *SQLiteStorage) ListSignatureMeals(ctx context.Context) ([]models.SignatureMeal, error) {
	query := `
        SELECT id, name, COALESCE(description, ''), COALESCE(cuisine_id, ''), COALESCE(image_url, ''),
            COALESCE(total_calories, 0), COALESCE(total_protein, 0), COALESCE(total_carbs, 0),
            COALESCE(total_fats, 0), COALESCE(base_price, 0), COALESCE(tier, ''), COALESCE(chef_notes, ''),
            is_featured, is_active
        FROM signature_meals
        ORDER BY rowid
    `
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query signature meals: %w", err)
	}
	defer rows.Close()

	var meals []models.SignatureMeal
	for rows.Next() {
		var m models.SignatureMeal
		err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.CuisineID, &m.ImageURL,
			&m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFats, &m.BasePrice,
			&m.Tier, &m.ChefNotes, &m.IsFeatured, &m.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signature meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}
