package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

func TestAppError_HTTPStatus(t *testing.T) {
	cases := map[apperror.ErrorCode]int{
		apperror.ErrCodeNotFound:          http.StatusNotFound,
		apperror.ErrCodeForbidden:         http.StatusForbidden,
		apperror.ErrCodeInvalidState:      http.StatusConflict,
		apperror.ErrCodeInsufficientFunds: http.StatusPaymentRequired,
		apperror.ErrCodeDuplicateProposal: http.StatusConflict,
		apperror.ErrCodeBelowFloorPrice:   http.StatusUnprocessableEntity,
		apperror.ErrCodeTaskNotOpen:       http.StatusConflict,
		apperror.ErrCodeValidation:        http.StatusBadRequest,
		apperror.ErrCodeDatabaseError:     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, apperror.New(code, "x").HTTPStatus, code)
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("escrow: %w", apperror.InvalidState("contract", "active", "escrow"))

	assert.True(t, errors.Is(err, apperror.ErrInvalidState))
	assert.True(t, apperror.IsInvalidState(err))
	assert.False(t, apperror.IsNotFound(err))
}

func TestAppError_WithDetailCopies(t *testing.T) {
	base := apperror.New(apperror.ErrCodeValidation, "bad")
	withField := base.WithDetail("field", "title")

	assert.Nil(t, base.Details)
	assert.Equal(t, "title", withField.Details["field"])
}

func TestInsufficientFunds_Details(t *testing.T) {
	err := apperror.InsufficientFunds(decimal.NewFromInt(40), decimal.NewFromInt(25))

	assert.True(t, apperror.IsInsufficientFunds(err))
	assert.Equal(t, "40", err.Details["required"])
	assert.Equal(t, "25", err.Details["available"])
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperror.Wrap(cause, apperror.ErrCodeDatabaseError, "ошибка БД")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
