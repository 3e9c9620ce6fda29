package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeDuplicateProposal ErrorCode = "DUPLICATE_PROPOSAL"
	ErrCodeBelowFloorPrice   ErrorCode = "BELOW_FLOOR_PRICE"
	ErrCodeTaskNotOpen       ErrorCode = "TASK_NOT_OPEN"
	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"
)

// AppError несёт код, сообщение для клиента и структурированные детали.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, поэтому errors.Is(err, ErrInvalidState) работает
// для любой ошибки с тем же кодом.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail возвращает копию ошибки с дополнительным полем в Details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value

	cp := *e
	cp.Details = details
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidState, ErrCodeDuplicateProposal, ErrCodeTaskNotOpen:
		return http.StatusConflict
	case ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case ErrCodeBelowFloorPrice:
		return http.StatusUnprocessableEntity
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HasCode проверяет, что в цепочке ошибок есть AppError с указанным кодом.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return HasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return HasCode(err, ErrCodeValidation)
}

func IsInvalidState(err error) bool {
	return HasCode(err, ErrCodeInvalidState)
}

func IsInsufficientFunds(err error) bool {
	return HasCode(err, ErrCodeInsufficientFunds)
}

// Validation создаёт ошибку валидации с указанием поля.
func Validation(field, message string) *AppError {
	return New(ErrCodeValidation, message).WithDetail("field", field)
}

// InvalidState описывает попытку перехода из состояния, которое его не допускает.
func InvalidState(entity, current, operation string) *AppError {
	return New(ErrCodeInvalidState, fmt.Sprintf("операция %s недоступна: %s в статусе %s", operation, entity, current)).
		WithDetail("entity", entity).
		WithDetail("state", current).
		WithDetail("operation", operation)
}

// InsufficientFunds несёт требуемую и доступную сумму, чтобы клиент мог показать разницу.
func InsufficientFunds(required, available fmt.Stringer) *AppError {
	return New(ErrCodeInsufficientFunds, "недостаточно средств на балансе").
		WithDetail("required", required.String()).
		WithDetail("available", available.String())
}

var (
	ErrTaskNotFound        = New(ErrCodeNotFound, "задача не найдена")
	ErrProposalNotFound    = New(ErrCodeNotFound, "предложение не найдено")
	ErrContractNotFound    = New(ErrCodeNotFound, "контракт не найден")
	ErrWalletNotFound      = New(ErrCodeNotFound, "кошелёк не найден")
	ErrTransactionNotFound = New(ErrCodeNotFound, "транзакция не найдена")
	ErrUserNotFound        = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden           = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials  = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrEmailTaken          = New(ErrCodeConflict, "пользователь с таким email уже существует")
	ErrDuplicateProposal   = New(ErrCodeDuplicateProposal, "у вас уже есть активное предложение по этой задаче")
	ErrTaskNotOpen         = New(ErrCodeTaskNotOpen, "задача не принимает предложения")
	ErrInvalidState        = New(ErrCodeInvalidState, "недопустимый переход состояния")
)
