package valueobject

import (
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Суммы в Time Coins хранятся с точностью до сотых.
const CoinScale = 2

var (
	MinTaskBudget = decimal.NewFromInt(1)
	MaxTaskBudget = decimal.NewFromInt(10000)
	MinBid        = decimal.NewFromInt(1)
	MaxBid        = decimal.NewFromInt(10000)
)

// NewCoins проверяет, что сумма положительна и не длиннее двух знаков после запятой.
func NewCoins(field string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.Validation(field, "сумма должна быть положительной")
	}
	if !amount.Equal(amount.Round(CoinScale)) {
		return decimal.Zero, apperror.Validation(field, "сумма указывается с точностью до сотых")
	}
	return amount, nil
}

// NewCoinsInRange дополнительно ограничивает сумму сверху и снизу.
func NewCoinsInRange(field string, amount, min, max decimal.Decimal) (decimal.Decimal, error) {
	amount, err := NewCoins(field, amount)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.LessThan(min) || amount.GreaterThan(max) {
		return decimal.Zero, apperror.Validation(field, "сумма вне допустимого диапазона").
			WithDetail("min", min.String()).
			WithDetail("max", max.String())
	}
	return amount, nil
}
