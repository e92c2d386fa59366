// internal/storage/users.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

func (s *SQLiteStorage) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	query := `
        INSERT INTO user_profiles (id, full_name, age, weight, height, activity_level, fitness_goal,
            daily_calories, daily_protein, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            full_name = excluded.full_name,
            age = excluded.age,
            weight = excluded.weight,
            height = excluded.height,
            activity_level = excluded.activity_level,
            fitness_goal = excluded.fitness_goal,
            daily_calories = excluded.daily_calories,
            daily_protein = excluded.daily_protein,
            updated_at = excluded.updated_at
    `
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.FullName, p.Age, p.Weight, p.Height, p.ActivityLevel, p.FitnessGoal,
		p.DailyCalories, p.DailyProtein, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns models.ErrNotFound when the user has no profile yet.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
        SELECT id, full_name, age, weight, height, activity_level, fitness_goal,
            daily_calories, daily_protein, created_at, updated_at
        FROM user_profiles
        WHERE id = ?
    `
	p := &models.UserProfile{}
	var createdAtStr, updatedAtStr string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.FullName, &p.Age, &p.Weight, &p.Height, &p.ActivityLevel, &p.FitnessGoal,
		&p.DailyCalories, &p.DailyProtein, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	if p.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}

func (s *SQLiteStorage) SaveUserMeal(ctx context.Context, meal *models.UserMeal) error {
	ingredients, err := json.Marshal(meal.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}

	query := `
        INSERT INTO user_meals (id, user_id, name, meal_type, signature_meal_id, ingredients,
            total_calories, total_protein, total_carbs, total_fats, total_cost, tier, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = s.db.ExecContext(ctx, query,
		meal.ID, meal.UserID, meal.Name, meal.MealType, meal.SignatureMealID, string(ingredients),
		meal.TotalCalories, meal.TotalProtein, meal.TotalCarbs, meal.TotalFats, meal.TotalCost,
		string(meal.Tier), formatTime(meal.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

// ListUserMeals returns the user's saved meals, newest first.
func (s *SQLiteStorage) ListUserMeals(ctx context.Context, userID string, limit int) ([]*models.UserMeal, error) {
	query := `
        SELECT id, user_id, name, meal_type, signature_meal_id, ingredients,
            total_calories, total_protein, total_carbs, total_fats, total_cost, tier, created_at
        FROM user_meals
        WHERE user_id = ?
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []*models.UserMeal
	for rows.Next() {
		meal := &models.UserMeal{}
		var ingredientsJSON, tierStr, createdAtStr string

		err := rows.Scan(
			&meal.ID, &meal.UserID, &meal.Name, &meal.MealType, &meal.SignatureMealID, &ingredientsJSON,
			&meal.TotalCalories, &meal.TotalProtein, &meal.TotalCarbs, &meal.TotalFats, &meal.TotalCost,
			&tierStr, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}

		if err := json.Unmarshal([]byte(ingredientsJSON), &meal.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients for meal %s: %w", meal.ID, err)
		}
		if meal.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		meal.Tier = models.Tier(tierStr)

		meals = append(meals, meal)
	}

	return meals, rows.Err()
}

// SaveDailyStats upserts one row per user and date.
func (s *SQLiteStorage) SaveDailyStats(ctx context.Context, st *models.UserStats) error {
	query := `
        INSERT INTO user_stats (id, user_id, date, calories_consumed, calories_burned, current_weight,
            strength_index, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id, date) DO UPDATE SET
            calories_consumed = excluded.calories_consumed,
            calories_burned = excluded.calories_burned,
            current_weight = excluded.current_weight,
            strength_index = excluded.strength_index,
            updated_at = excluded.updated_at
    `
	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.UserID, st.Date, st.CaloriesConsumed, st.CaloriesBurned, st.CurrentWeight,
		st.StrengthIndex, formatTime(st.CreatedAt), formatTime(st.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save daily stats: %w", err)
	}
	return nil
}

// GetDailyStats returns models.ErrNotFound when nothing was logged that day.
func (s *SQLiteStorage) GetDailyStats(ctx context.Context, userID, date string) (*models.UserStats, error) {
	query := `
        SELECT id, user_id, date, calories_consumed, calories_burned, current_weight, strength_index,
            created_at, updated_at
        FROM user_stats
        WHERE user_id = ? AND date = ?
    `
	st := &models.UserStats{}
	var createdAtStr, updatedAtStr string
	err := s.db.QueryRowContext(ctx, query, userID, date).Scan(
		&st.ID, &st.UserID, &st.Date, &st.CaloriesConsumed, &st.CaloriesBurned, &st.CurrentWeight,
		&st.StrengthIndex, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	if st.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if st.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return st, nil
}
