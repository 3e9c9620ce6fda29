package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
)

type WalletResponse struct {
	UserID    uuid.UUID       `json:"userId"`
	Available decimal.Decimal `json:"available"`
	Escrowed  decimal.Decimal `json:"escrowed"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AmountRequest - тело пополнения и вывода. Сумма принимается числом или строкой.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type TransactionResponse struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Status       string          `json:"status"`
	ContractID   *uuid.UUID      `json:"contractId,omitempty"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

type MoveResponse struct {
	Wallet      WalletResponse      `json:"wallet"`
	Transaction TransactionResponse `json:"transaction"`
}

func ToWalletResponse(w *entity.Wallet) WalletResponse {
	return WalletResponse{
		UserID:    w.UserID,
		Available: w.Available,
		Escrowed:  w.Escrowed,
		Total:     w.Total(),
		UpdatedAt: w.UpdatedAt,
	}
}

func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		Type:         string(t.Type),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Status:       string(t.Status),
		ContractID:   t.ContractID,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
		CompletedAt:  t.CompletedAt,
	}
}

func ToTransactionResponses(txs []*entity.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		responses = append(responses, ToTransactionResponse(t))
	}
	return responses
}
