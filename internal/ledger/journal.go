package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// Journal - журнал операций. Записи создаются только из методов Ledger,
// по одной на каждое изменение баланса.
type Journal struct {
	txs repository.TransactionRepository
	now func() time.Time
}

func NewJournal(txs repository.TransactionRepository) *Journal {
	return &Journal{txs: txs, now: time.Now}
}

type entry struct {
	userID       uuid.UUID
	txType       valueobject.TransactionType
	amount       decimal.Decimal
	balanceAfter decimal.Decimal
	status       valueobject.TransactionStatus
	contractID   *uuid.UUID
	description  string
}

func (j *Journal) record(ctx context.Context, e entry) (*entity.Transaction, error) {
	now := j.now()
	tx := &entity.Transaction{
		UserID:       e.userID,
		Type:         e.txType,
		Amount:       e.amount,
		BalanceAfter: e.balanceAfter,
		Status:       e.status,
		ContractID:   e.contractID,
		Description:  e.description,
		CreatedAt:    now,
	}
	if e.status == valueobject.TransactionStatusCompleted {
		tx.CompletedAt = &now
	}
	if err := j.txs.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// List возвращает операции пользователя от новых к старым.
func (j *Journal) List(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	return j.txs.List(ctx, userID, filter)
}

// Get возвращает операцию, только если она принадлежит пользователю.
func (j *Journal) Get(ctx context.Context, userID uuid.UUID, id int64) (*entity.Transaction, error) {
	tx, err := j.txs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, apperror.ErrTransactionNotFound
	}
	return tx, nil
}

// ParseFilter разбирает параметр type: income, expense или тип операции.
func ParseFilter(kind string) (repository.TransactionFilter, error) {
	switch kind {
	case "", "all":
		return repository.TransactionFilter{}, nil
	case string(repository.DirectionIncome):
		return repository.TransactionFilter{Direction: repository.DirectionIncome}, nil
	case string(repository.DirectionExpense):
		return repository.TransactionFilter{Direction: repository.DirectionExpense}, nil
	}
	t := valueobject.TransactionType(kind)
	if !t.IsValid() {
		return repository.TransactionFilter{}, apperror.Validation("type", "неизвестный тип операции")
	}
	return repository.TransactionFilter{Type: t}, nil
}
