package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// Wallet - два счётчика баланса пользователя. Оба никогда не уходят в минус.
type Wallet struct {
	UserID    uuid.UUID
	Available decimal.Decimal
	Escrowed  decimal.Decimal
	UpdatedAt time.Time
}

func NewWallet(userID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		UserID:    userID,
		Available: decimal.Zero,
		Escrowed:  decimal.Zero,
		UpdatedAt: now,
	}
}

func (w *Wallet) Total() decimal.Decimal {
	return w.Available.Add(w.Escrowed)
}

// Hold переводит сумму из доступного баланса в эскроу.
func (w *Wallet) Hold(amount decimal.Decimal, now time.Time) error {
	if w.Available.LessThan(amount) {
		return apperror.InsufficientFunds(amount, w.Available)
	}
	w.Available = w.Available.Sub(amount)
	w.Escrowed = w.Escrowed.Add(amount)
	w.UpdatedAt = now
	return nil
}

// ReleaseEscrow списывает сумму из эскроу. Получатель зачисляется отдельно через Credit.
func (w *Wallet) ReleaseEscrow(amount decimal.Decimal, now time.Time) error {
	if w.Escrowed.LessThan(amount) {
		return apperror.InsufficientFunds(amount, w.Escrowed).WithDetail("balance", "escrowed")
	}
	w.Escrowed = w.Escrowed.Sub(amount)
	w.UpdatedAt = now
	return nil
}

// RefundEscrow возвращает сумму из эскроу на доступный баланс того же пользователя.
func (w *Wallet) RefundEscrow(amount decimal.Decimal, now time.Time) error {
	if w.Escrowed.LessThan(amount) {
		return apperror.InsufficientFunds(amount, w.Escrowed).WithDetail("balance", "escrowed")
	}
	w.Escrowed = w.Escrowed.Sub(amount)
	w.Available = w.Available.Add(amount)
	w.UpdatedAt = now
	return nil
}

func (w *Wallet) Credit(amount decimal.Decimal, now time.Time) {
	w.Available = w.Available.Add(amount)
	w.UpdatedAt = now
}

func (w *Wallet) Debit(amount decimal.Decimal, now time.Time) error {
	if w.Available.LessThan(amount) {
		return apperror.InsufficientFunds(amount, w.Available)
	}
	w.Available = w.Available.Sub(amount)
	w.UpdatedAt = now
	return nil
}

func (w *Wallet) Clone() *Wallet {
	cp := *w
	return &cp
}
