package pricing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pricing"
)

func TestTableOracle_BaseCategory(t *testing.T) {
	rec, err := pricing.NewTableOracle().Recommend(context.Background(), pricing.Input{
		Category:   valueobject.CategoryProgramming,
		Skills:     []string{"Go"},
		Complexity: valueobject.ComplexityMedium,
		Urgency:    valueobject.UrgencyNormal,
	})
	require.NoError(t, err)

	assert.True(t, rec.P25.Equal(decimal.NewFromInt(60)), rec.P25.String())
	assert.True(t, rec.P50.Equal(decimal.NewFromInt(80)), rec.P50.String())
	assert.True(t, rec.P75.Equal(decimal.NewFromInt(100)), rec.P75.String())
	assert.True(t, rec.Floor.Equal(decimal.NewFromInt(30)), rec.Floor.String())
	assert.Equal(t, pricing.ConfidenceLow, rec.Confidence)
	assert.InDelta(t, 50.0/70.0, rec.AcceptanceProbability, 1e-4)
}

func TestTableOracle_FactorsApply(t *testing.T) {
	rec, err := pricing.NewTableOracle().Recommend(context.Background(), pricing.Input{
		Category:    valueobject.CategoryWriting,
		Skills:      []string{"React"},
		Complexity:  valueobject.ComplexityComplex,
		Urgency:     valueobject.UrgencyRush,
		SampleCount: 30,
	})
	require.NoError(t, err)

	// 40 * 1.2 * 1.5 * 1.4 = 100.8
	assert.True(t, rec.P50.Equal(decimal.NewFromInt(101)), rec.P50.String())
	// пол зависит только от сложности: 15 * 1.5 = 22.5
	assert.True(t, rec.Floor.Equal(decimal.NewFromInt(23)), rec.Floor.String())
	assert.Equal(t, pricing.ConfidenceHigh, rec.Confidence)
	assert.LessOrEqual(t, rec.AcceptanceProbability, 0.95)
	assert.GreaterOrEqual(t, rec.AcceptanceProbability, 0.05)
}

func TestTableOracle_UnknownCategoryFallsBackToOther(t *testing.T) {
	rec, err := pricing.NewTableOracle().Recommend(context.Background(), pricing.Input{Category: "Cooking"})
	require.NoError(t, err)
	assert.True(t, rec.Floor.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1.0, rec.Factors.Complexity)
}
