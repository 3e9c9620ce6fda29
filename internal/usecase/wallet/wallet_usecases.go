package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/ledger"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

type GetBalanceUseCase struct {
	ledger *ledger.Ledger
}

func NewGetBalanceUseCase(l *ledger.Ledger) *GetBalanceUseCase {
	return &GetBalanceUseCase{ledger: l}
}

func (uc *GetBalanceUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	return uc.ledger.Balance(ctx, userID)
}

type MoveResult struct {
	Wallet      *entity.Wallet
	Transaction *entity.Transaction
}

// DepositUseCase пополняет доступный баланс.
type DepositUseCase struct {
	ledger *ledger.Ledger
}

func NewDepositUseCase(l *ledger.Ledger) *DepositUseCase {
	return &DepositUseCase{ledger: l}
}

func (uc *DepositUseCase) Execute(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*MoveResult, error) {
	tx, err := uc.ledger.Deposit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return withBalance(ctx, uc.ledger, tx)
}

// WithdrawUseCase списывает сумму и оставляет операцию в pending до подтверждения оператором.
type WithdrawUseCase struct {
	ledger *ledger.Ledger
}

func NewWithdrawUseCase(l *ledger.Ledger) *WithdrawUseCase {
	return &WithdrawUseCase{ledger: l}
}

func (uc *WithdrawUseCase) Execute(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*MoveResult, error) {
	tx, err := uc.ledger.Withdraw(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": tx.ID,
		"amount":         amount.String(),
	}).Info("withdrawal requested")
	return withBalance(ctx, uc.ledger, tx)
}

func withBalance(ctx context.Context, l *ledger.Ledger, tx *entity.Transaction) (*MoveResult, error) {
	w, err := l.Balance(ctx, tx.UserID)
	if err != nil {
		return nil, err
	}
	return &MoveResult{Wallet: w, Transaction: tx}, nil
}

// SettleWithdrawalUseCase - ручное подтверждение или отклонение вывода оператором.
type SettleWithdrawalUseCase struct {
	ledger *ledger.Ledger
}

func NewSettleWithdrawalUseCase(l *ledger.Ledger) *SettleWithdrawalUseCase {
	return &SettleWithdrawalUseCase{ledger: l}
}

func (uc *SettleWithdrawalUseCase) Execute(ctx context.Context, txID int64, success bool) (*entity.Transaction, error) {
	tx, err := uc.ledger.SettleWithdrawal(ctx, txID, success)
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"user_id":        tx.UserID,
		"transaction_id": tx.ID,
		"status":         tx.Status,
	}).Info("withdrawal settled")
	return tx, nil
}

type TransactionList struct {
	Transactions []*entity.Transaction
	Total        int
	Page         repository.Page
}

// ListTransactionsUseCase - история операций, type = income | expense | тип операции.
type ListTransactionsUseCase struct {
	journal *ledger.Journal
}

func NewListTransactionsUseCase(journal *ledger.Journal) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{journal: journal}
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context, userID uuid.UUID, kind string, page repository.Page) (*TransactionList, error) {
	filter, err := ledger.ParseFilter(kind)
	if err != nil {
		return nil, err
	}
	filter.Page = page.Normalize()

	txs, total, err := uc.journal.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return &TransactionList{Transactions: txs, Total: total, Page: filter.Page}, nil
}

type GetTransactionUseCase struct {
	journal *ledger.Journal
}

func NewGetTransactionUseCase(journal *ledger.Journal) *GetTransactionUseCase {
	return &GetTransactionUseCase{journal: journal}
}

func (uc *GetTransactionUseCase) Execute(ctx context.Context, userID uuid.UUID, id int64) (*entity.Transaction, error) {
	return uc.journal.Get(ctx, userID, id)
}
