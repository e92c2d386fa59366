// internal/dashboard/dashboard.go

// Package dashboard assembles a member's daily overview from their profile,
// today's stats and recently saved meals.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/nutrition"
)

const (
	DefaultDailyCalories = 2000
	DefaultDailyProtein  = 150
	DefaultStrength      = 50
	RecentMealLimit      = 5

	dateLayout = "2006-01-02"
)

type Summary struct {
	UserID           string              `json:"user_id"`
	Date             string              `json:"date"`
	DailyCalories    int                 `json:"daily_calories"`
	DailyProtein     int                 `json:"daily_protein"`
	CaloriesConsumed float64             `json:"calories_consumed"`
	CaloriesBurned   float64             `json:"calories_burned"`
	NetCalories      float64             `json:"net_calories"`
	CalorieProgress  float64             `json:"calorie_progress"`
	CurrentWeight    float64             `json:"current_weight"`
	StrengthIndex    float64             `json:"strength_index"`
	RecentMeals      []*models.UserMeal  `json:"recent_meals"`
	Tips             []string            `json:"tips"`
	Profile          *models.UserProfile `json:"profile,omitempty"`
}

// Build is the pure part: any of profile and stats may be nil.
func Build(userID, date string, profile *models.UserProfile, stats *models.UserStats, meals []*models.UserMeal) Summary {
	s := Summary{
		UserID:        userID,
		Date:          date,
		DailyCalories: DefaultDailyCalories,
		DailyProtein:  DefaultDailyProtein,
		StrengthIndex: DefaultStrength,
		Profile:       profile,
	}

	if profile != nil {
		if profile.DailyCalories > 0 {
			s.DailyCalories = profile.DailyCalories
		}
		if profile.DailyProtein > 0 {
			s.DailyProtein = profile.DailyProtein
		}
	}

	if stats != nil {
		s.CaloriesConsumed = stats.CaloriesConsumed
		s.CaloriesBurned = stats.CaloriesBurned
		s.CurrentWeight = stats.CurrentWeight
		if stats.StrengthIndex > 0 {
			s.StrengthIndex = stats.StrengthIndex
		}
	}

	s.NetCalories = s.CaloriesConsumed - s.CaloriesBurned
	s.CalorieProgress = nutrition.PercentOf(s.CaloriesConsumed, float64(s.DailyCalories))

	if len(meals) > RecentMealLimit {
		meals = meals[:RecentMealLimit]
	}
	s.RecentMeals = meals
	if s.RecentMeals == nil {
		s.RecentMeals = []*models.UserMeal{}
	}

	s.Tips = []string{
		fmt.Sprintf("You've logged %d meals recently. Keep the momentum going!", len(s.RecentMeals)),
		fmt.Sprintf("Aim for %dg of protein today for optimal recovery.", s.DailyProtein),
		"Add a workout session to burn extra calories and boost strength.",
	}
	return s
}

// Store is the persistence the dashboard reads from.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	GetDailyStats(ctx context.Context, userID, date string) (*models.UserStats, error)
	ListUserMeals(ctx context.Context, userID string, limit int) ([]*models.UserMeal, error)
}

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: time.Now}
}

// Today builds the summary for the current UTC day. The three reads run
// concurrently. A missing profile or stats row falls back to defaults;
// other read failures are returned.
func (s *Service) Today(ctx context.Context, userID string) (Summary, error) {
	if userID == "" {
		return Summary{}, &models.FieldError{Field: "user_id", Message: "This field is required"}
	}
	date := s.now().UTC().Format(dateLayout)

	var (
		profile *models.UserProfile
		stats   *models.UserStats
		meals   []*models.UserMeal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx, userID)
		switch {
		case err == nil:
			profile = p
		case !errors.Is(err, models.ErrNotFound):
			return fmt.Errorf("failed to load profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		st, err := s.store.GetDailyStats(gctx, userID, date)
		switch {
		case err == nil:
			stats = st
		case !errors.Is(err, models.ErrNotFound):
			return fmt.Errorf("failed to load daily stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		m, err := s.store.ListUserMeals(gctx, userID, RecentMealLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent meals: %w", err)
		}
		meals = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s.log.Debug("dashboard built",
		zap.String("user_id", userID),
		zap.Bool("has_profile", profile != nil),
		zap.Bool("has_stats", stats != nil),
		zap.Int("meals", len(meals)))

	return Build(userID, date, profile, stats, meals), nil
}
