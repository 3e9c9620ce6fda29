package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// Transaction - запись журнала движения средств. После создания меняется только статус
// и только из pending.
type Transaction struct {
	ID           int64
	UserID       uuid.UUID
	Type         valueobject.TransactionType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Status       valueobject.TransactionStatus
	ContractID   *uuid.UUID
	Description  string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

func (t *Transaction) IsPending() bool {
	return t.Status == valueobject.TransactionStatusPending
}

func (t *Transaction) Complete(now time.Time) error {
	if !t.IsPending() {
		return apperror.InvalidState("transaction", string(t.Status), "complete")
	}
	t.Status = valueobject.TransactionStatusCompleted
	t.CompletedAt = &now
	return nil
}

func (t *Transaction) Fail(now time.Time) error {
	if !t.IsPending() {
		return apperror.InvalidState("transaction", string(t.Status), "fail")
	}
	t.Status = valueobject.TransactionStatusFailed
	t.CompletedAt = &now
	return nil
}

func (t *Transaction) Clone() *Transaction {
	cp := *t
	if t.ContractID != nil {
		id := *t.ContractID
		cp.ContractID = &id
	}
	cp.CompletedAt = cloneTime(t.CompletedAt)
	return &cp
}
