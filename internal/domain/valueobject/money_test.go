package valueobject_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

func TestNewCoins(t *testing.T) {
	_, err := valueobject.NewCoins("amount", decimal.RequireFromString("12.50"))
	assert.NoError(t, err)

	_, err = valueobject.NewCoins("amount", decimal.Zero)
	assert.True(t, apperror.IsValidation(err))

	_, err = valueobject.NewCoins("amount", decimal.RequireFromString("-3"))
	assert.True(t, apperror.IsValidation(err))

	_, err = valueobject.NewCoins("amount", decimal.RequireFromString("1.005"))
	assert.True(t, apperror.IsValidation(err))
}

func TestNewCoinsInRange(t *testing.T) {
	_, err := valueobject.NewCoinsInRange("budget", decimal.NewFromInt(10000), valueobject.MinTaskBudget, valueobject.MaxTaskBudget)
	assert.NoError(t, err)

	_, err = valueobject.NewCoinsInRange("budget", decimal.NewFromInt(10001), valueobject.MinTaskBudget, valueobject.MaxTaskBudget)
	var appErr *apperror.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, "budget", appErr.Details["field"])
		assert.Equal(t, "10000", appErr.Details["max"])
	}
}
