package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/timebank-backend/internal/ledger"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// TestPropertyLedgerBalancesMatchJournal: после любой последовательности операций
// балансы неотрицательны, доступный баланс равен сумме не-failed записей журнала,
// а общая сумма в системе равна пополнениям минус выводы, кроме неудавшихся.
func TestPropertyLedgerBalancesMatchJournal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		store := memory.NewStore()
		wallets := memory.NewWalletRepository(store)
		l := ledger.New(store, wallets, ledger.NewJournal(memory.NewTransactionRepository(store)))

		users := make([]uuid.UUID, 3)
		for i := range users {
			users[i] = uuid.New()
			if err := wallets.Create(ctx, entity.NewWallet(users[i], time.Now())); err != nil {
				rt.Fatalf("create wallet: %v", err)
			}
		}

		external := decimal.Zero
		var pending []int64

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			u := rapid.SampledFrom(users).Draw(rt, "user")
			other := rapid.SampledFrom(users).Draw(rt, "other")
			amount := decimal.NewFromInt(int64(rapid.IntRange(1, 60).Draw(rt, "amount")))

			var err error
			switch op := rapid.SampledFrom([]string{"deposit", "withdraw", "settle", "hold", "release", "refund"}).Draw(rt, "op"); op {
			case "deposit":
				if _, err = l.Deposit(ctx, u, amount); err == nil {
					external = external.Add(amount)
				}
			case "withdraw":
				var tx *entity.Transaction
				if tx, err = l.Withdraw(ctx, u, amount); err == nil {
					external = external.Sub(amount)
					pending = append(pending, tx.ID)
				}
			case "settle":
				if len(pending) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(pending)-1).Draw(rt, "pending_idx")
				success := rapid.Bool().Draw(rt, "success")
				var tx *entity.Transaction
				if tx, err = l.SettleWithdrawal(ctx, pending[idx], success); err == nil {
					if !success {
						external = external.Sub(tx.Amount)
					}
					pending = append(pending[:idx], pending[idx+1:]...)
				}
			case "hold":
				_, err = l.Hold(ctx, u, amount, nil)
			case "release":
				_, err = l.Release(ctx, u, other, amount, nil)
			case "refund":
				_, err = l.Refund(ctx, u, amount, nil)
			}
			if err != nil && !apperror.IsInsufficientFunds(err) {
				rt.Fatalf("step %d: unexpected error: %v", i, err)
			}
		}

		total := decimal.Zero
		for _, u := range users {
			w, err := l.Balance(ctx, u)
			if err != nil {
				rt.Fatalf("balance: %v", err)
			}
			if w.Available.IsNegative() || w.Escrowed.IsNegative() {
				rt.Fatalf("negative balance: available=%s escrowed=%s", w.Available, w.Escrowed)
			}
			total = total.Add(w.Total())

			txs, _, err := l.Journal().List(ctx, u, repository.TransactionFilter{Page: repository.Page{Limit: repository.MaxPageSize}})
			if err != nil {
				rt.Fatalf("journal: %v", err)
			}
			sum := decimal.Zero
			for _, tx := range txs {
				if tx.Status != valueobject.TransactionStatusFailed {
					sum = sum.Add(tx.Amount)
				}
			}
			if !sum.Equal(w.Available) {
				rt.Fatalf("available %s != journal sum %s", w.Available, sum)
			}
		}
		if !total.Equal(external) {
			rt.Fatalf("total %s != external flow %s", total, external)
		}
	})
}
