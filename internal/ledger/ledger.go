// Package ledger ведёт доступный и зарезервированный баланс пользователей.
// Каждое изменение баланса выполняется под блокировкой кошелька и сопровождается
// ровно одной записью в журнале.
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

type Ledger struct {
	tx      repository.Transactor
	wallets repository.WalletRepository
	txs     repository.TransactionRepository
	journal *Journal
	now     func() time.Time
}

func New(tx repository.Transactor, wallets repository.WalletRepository, journal *Journal) *Ledger {
	return &Ledger{
		tx:      tx,
		wallets: wallets,
		txs:     journal.txs,
		journal: journal,
		now:     time.Now,
	}
}

// WithClock подменяет источник времени для ledger и журнала.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	l.journal.now = now
	return l
}

func (l *Ledger) Journal() *Journal {
	return l.journal
}

func (l *Ledger) Balance(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	return l.wallets.FindByUserID(ctx, userID)
}

func (l *Ledger) lockOne(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	locked, err := l.wallets.LockForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return locked[userID], nil
}

// Hold резервирует сумму под контракт: available -> escrowed.
func (l *Ledger) Hold(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, contractID *uuid.UUID) (*entity.Transaction, error) {
	if _, err := valueobject.NewCoins("amount", amount); err != nil {
		return nil, err
	}

	var out *entity.Transaction
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := l.lockOne(ctx, userID)
		if err != nil {
			return err
		}
		if err := w.Hold(amount, l.now()); err != nil {
			return err
		}
		if err := l.wallets.Update(ctx, w); err != nil {
			return err
		}
		out, err = l.journal.record(ctx, entry{
			userID:       userID,
			txType:       valueobject.TransactionTypeEscrowHold,
			amount:       amount.Neg(),
			balanceAfter: w.Available,
			status:       valueobject.TransactionStatusCompleted,
			contractID:   contractID,
			description:  "Резервирование средств по контракту",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Release списывает сумму из эскроу плательщика и зачисляет получателю.
// Запись в журнале создаётся только у получателя: у плательщика деньги ушли из доступного при Hold.
func (l *Ledger) Release(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, contractID *uuid.UUID) (*entity.Transaction, error) {
	if _, err := valueobject.NewCoins("amount", amount); err != nil {
		return nil, err
	}

	var out *entity.Transaction
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := l.wallets.LockForUpdate(ctx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		from, to := locked[fromUserID], locked[toUserID]
		now := l.now()

		if err := from.ReleaseEscrow(amount, now); err != nil {
			return err
		}
		to.Credit(amount, now)

		if err := l.wallets.Update(ctx, from); err != nil {
			return err
		}
		if fromUserID != toUserID {
			if err := l.wallets.Update(ctx, to); err != nil {
				return err
			}
		}
		out, err = l.journal.record(ctx, entry{
			userID:       toUserID,
			txType:       valueobject.TransactionTypeRelease,
			amount:       amount,
			balanceAfter: to.Available,
			status:       valueobject.TransactionStatusCompleted,
			contractID:   contractID,
			description:  "Оплата по контракту",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Refund возвращает сумму из эскроу на доступный баланс того же пользователя.
func (l *Ledger) Refund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, contractID *uuid.UUID) (*entity.Transaction, error) {
	if _, err := valueobject.NewCoins("amount", amount); err != nil {
		return nil, err
	}

	var out *entity.Transaction
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := l.lockOne(ctx, userID)
		if err != nil {
			return err
		}
		if err := w.RefundEscrow(amount, l.now()); err != nil {
			return err
		}
		if err := l.wallets.Update(ctx, w); err != nil {
			return err
		}
		out, err = l.journal.record(ctx, entry{
			userID:       userID,
			txType:       valueobject.TransactionTypeRefund,
			amount:       amount,
			balanceAfter: w.Available,
			status:       valueobject.TransactionStatusCompleted,
			contractID:   contractID,
			description:  "Возврат средств по контракту",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entity.Transaction, error) {
	if _, err := valueobject.NewCoins("amount", amount); err != nil {
		return nil, err
	}

	var out *entity.Transaction
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := l.lockOne(ctx, userID)
		if err != nil {
			return err
		}
		w.Credit(amount, l.now())
		if err := l.wallets.Update(ctx, w); err != nil {
			return err
		}
		out, err = l.journal.record(ctx, entry{
			userID:       userID,
			txType:       valueobject.TransactionTypeDeposit,
			amount:       amount,
			balanceAfter: w.Available,
			status:       valueobject.TransactionStatusCompleted,
			description:  "Пополнение баланса",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Withdraw сразу списывает сумму с доступного баланса и создаёт операцию в статусе pending.
// Окончательный результат фиксирует SettleWithdrawal.
func (l *Ledger) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entity.Transaction, error) {
	if _, err := valueobject.NewCoins("amount", amount); err != nil {
		return nil, err
	}

	var out *entity.Transaction
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := l.lockOne(ctx, userID)
		if err != nil {
			return err
		}
		if err := w.Debit(amount, l.now()); err != nil {
			return err
		}
		if err := l.wallets.Update(ctx, w); err != nil {
			return err
		}
		out, err = l.journal.record(ctx, entry{
			userID:       userID,
			txType:       valueobject.TransactionTypeWithdrawal,
			amount:       amount.Neg(),
			balanceAfter: w.Available,
			status:       valueobject.TransactionStatusPending,
			description:  "Вывод средств",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SettleWithdrawal завершает вывод. При неудаче сумма возвращается на доступный баланс,
// а операция помечается failed.
func (l *Ledger) SettleWithdrawal(ctx context.Context, txID int64, success bool) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// порядок блокировок как у остальных операций: сначала кошелёк
		probe, err := l.txs.FindByID(ctx, txID)
		if err != nil {
			return err
		}
		if probe.Type != valueobject.TransactionTypeWithdrawal {
			return apperror.New(apperror.ErrCodeBadRequest, "завершить можно только операцию вывода")
		}
		w, err := l.lockOne(ctx, probe.UserID)
		if err != nil {
			return err
		}
		tx, err := l.txs.LockForUpdate(ctx, txID)
		if err != nil {
			return err
		}

		now := l.now()
		if success {
			err = tx.Complete(now)
		} else {
			err = tx.Fail(now)
		}
		if err != nil {
			return err
		}

		if !success {
			w.Credit(tx.Amount.Neg(), now)
			if err := l.wallets.Update(ctx, w); err != nil {
				return err
			}
		}
		if err := l.txs.UpdateStatus(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
