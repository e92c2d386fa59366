// internal/models/user.go
package models

import (
	"strings"
	"time"
)

type UserProfile struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Age           float64   `json:"age"`
	Weight        float64   `json:"weight"`
	Height        float64   `json:"height"`
	ActivityLevel string    `json:"activity_level"`
	FitnessGoal   string    `json:"fitness_goal"`
	DailyCalories int       `json:"daily_calories"`
	DailyProtein  int       `json:"daily_protein"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the fields a visitor types in by hand.
func (p *UserProfile) Validate() error {
	if p.ID == "" {
		return &FieldError{Field: "id", Message: "This field is required"}
	}
	if p.FullName != "" && len(strings.TrimSpace(p.FullName)) < 2 {
		return &FieldError{Field: "full_name", Message: "Name must be at least 2 characters"}
	}
	return nil
}

// UserStats is one user's activity for a single calendar day (YYYY-MM-DD).
type UserStats struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Date             string    `json:"date"`
	CaloriesConsumed float64   `json:"calories_consumed"`
	CaloriesBurned   float64   `json:"calories_burned"`
	CurrentWeight    float64   `json:"current_weight"`
	StrengthIndex    float64   `json:"strength_index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
