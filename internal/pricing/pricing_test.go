package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

func TestPricePerMeal(t *testing.T) {
	tests := []struct {
		tier models.Tier
		want float64
	}{
		{models.TierBasic, 260},
		{models.TierGood, 290},
		{models.TierGourmet, 340},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got, err := PricePerMeal(200, tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPricePerMeal_UnknownTier(t *testing.T) {
	_, err := PricePerMeal(200, "platinum")
	assert.ErrorIs(t, err, models.ErrUnknownTier)
}

func TestApplyPlan(t *testing.T) {
	got, err := ApplyPlan(290, models.PlanMonthly)
	require.NoError(t, err)
	assert.InDelta(t, 246.5, got, 1e-9)

	got, err = ApplyPlan(290, models.PlanWeekly)
	require.NoError(t, err)
	assert.InDelta(t, 275.5, got, 1e-9)

	got, err = ApplyPlan(290, models.PlanThreeDay)
	require.NoError(t, err)
	assert.Equal(t, 290.0, got)

	_, err = ApplyPlan(290, "yearly")
	assert.ErrorIs(t, err, models.ErrUnknownPlan)
}

func TestNewQuote(t *testing.T) {
	q, err := NewQuote(200, models.TierGood, models.PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, 90.0, q.Markup)
	assert.Equal(t, 290.0, q.PricePerMeal)
	assert.Equal(t, 15.0, q.DiscountPercent)
	assert.InDelta(t, 246.5, q.DiscountedPrice, 1e-9)
}
