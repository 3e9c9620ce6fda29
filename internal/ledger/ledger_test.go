package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/timebank-backend/internal/ledger"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type fixture struct {
	store   *memory.Store
	ledger  *ledger.Ledger
	wallets *memory.WalletRepository
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	wallets := memory.NewWalletRepository(store)
	f := &fixture{
		store:   store,
		wallets: wallets,
		clock:   time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	f.ledger = ledger.New(store, wallets, ledger.NewJournal(memory.NewTransactionRepository(store))).
		WithClock(func() time.Time {
			f.clock = f.clock.Add(time.Second)
			return f.clock
		})
	return f
}

func (f *fixture) user(t *testing.T, balance int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.wallets.Create(context.Background(), entity.NewWallet(id, f.clock)))
	if balance > 0 {
		_, err := f.ledger.Deposit(context.Background(), id, decimal.NewFromInt(balance))
		require.NoError(t, err)
	}
	return id
}

func (f *fixture) wallet(t *testing.T, id uuid.UUID) *entity.Wallet {
	t.Helper()
	w, err := f.ledger.Balance(context.Background(), id)
	require.NoError(t, err)
	return w
}

func coins(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestHold_MovesAvailableToEscrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, 100)
	contractID := uuid.New()

	tx, err := f.ledger.Hold(ctx, requester, coins(40), &contractID)
	require.NoError(t, err)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(60)))
	assert.True(t, w.Escrowed.Equal(coins(40)))

	assert.Equal(t, valueobject.TransactionTypeEscrowHold, tx.Type)
	assert.True(t, tx.Amount.Equal(coins(-40)))
	assert.True(t, tx.BalanceAfter.Equal(coins(60)))
	assert.Equal(t, contractID, *tx.ContractID)
	assert.NotZero(t, tx.ID)
}

func TestHold_InsufficientFundsRecordsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, 30)

	_, err := f.ledger.Hold(ctx, requester, coins(40), nil)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeInsufficientFunds, appErr.Code)
	assert.Equal(t, "40", appErr.Details["required"])
	assert.Equal(t, "30", appErr.Details["available"])

	list, _, err := f.ledger.Journal().List(ctx, requester, repository.TransactionFilter{Type: valueobject.TransactionTypeEscrowHold})
	require.NoError(t, err)
	assert.Empty(t, list)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(30)))
	assert.True(t, w.Escrowed.IsZero())
}

func TestRelease_CreditsRecipientOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, 100)
	provider := f.user(t, 5)

	_, err := f.ledger.Hold(ctx, requester, coins(40), nil)
	require.NoError(t, err)
	tx, err := f.ledger.Release(ctx, requester, provider, coins(40), nil)
	require.NoError(t, err)

	r := f.wallet(t, requester)
	p := f.wallet(t, provider)
	assert.True(t, r.Available.Equal(coins(60)))
	assert.True(t, r.Escrowed.IsZero())
	assert.True(t, p.Available.Equal(coins(45)))

	assert.Equal(t, provider, tx.UserID)
	assert.Equal(t, valueobject.TransactionTypeRelease, tx.Type)
	assert.True(t, tx.Amount.Equal(coins(40)))
	assert.True(t, tx.BalanceAfter.Equal(coins(45)))

	requesterReleases, _, err := f.ledger.Journal().List(ctx, requester, repository.TransactionFilter{Type: valueobject.TransactionTypeRelease})
	require.NoError(t, err)
	assert.Empty(t, requesterReleases)
}

func TestRelease_RequiresEscrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, 100)
	provider := f.user(t, 0)

	_, err := f.ledger.Release(ctx, requester, provider, coins(10), nil)
	assert.True(t, apperror.IsInsufficientFunds(err))
	assert.True(t, f.wallet(t, provider).Available.IsZero())
}

func TestRefund_RestoresAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, 100)

	_, err := f.ledger.Hold(ctx, requester, coins(40), nil)
	require.NoError(t, err)
	tx, err := f.ledger.Refund(ctx, requester, coins(40), nil)
	require.NoError(t, err)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(100)))
	assert.True(t, w.Escrowed.IsZero())
	assert.Equal(t, valueobject.TransactionTypeRefund, tx.Type)
	assert.True(t, tx.Amount.Equal(coins(40)))
}

func TestWithdraw_PendingThenFailedRestoresBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 50)

	tx, err := f.ledger.Withdraw(ctx, user, coins(20))
	require.NoError(t, err)
	assert.Equal(t, valueobject.TransactionStatusPending, tx.Status)
	assert.True(t, f.wallet(t, user).Available.Equal(coins(30)))

	settled, err := f.ledger.SettleWithdrawal(ctx, tx.ID, false)
	require.NoError(t, err)
	assert.Equal(t, valueobject.TransactionStatusFailed, settled.Status)
	assert.True(t, f.wallet(t, user).Available.Equal(coins(50)))

	_, err = f.ledger.SettleWithdrawal(ctx, tx.ID, true)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestWithdraw_CompletedKeepsBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 50)

	tx, err := f.ledger.Withdraw(ctx, user, coins(50))
	require.NoError(t, err)
	settled, err := f.ledger.SettleWithdrawal(ctx, tx.ID, true)
	require.NoError(t, err)

	assert.Equal(t, valueobject.TransactionStatusCompleted, settled.Status)
	assert.NotNil(t, settled.CompletedAt)
	assert.True(t, f.wallet(t, user).Available.IsZero())
}

func TestSettleWithdrawal_RejectsOtherTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 0)

	deposit, err := f.ledger.Deposit(ctx, user, coins(10))
	require.NoError(t, err)

	_, err = f.ledger.SettleWithdrawal(ctx, deposit.ID, true)
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeBadRequest))
}

func TestAmountValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 10)

	_, err := f.ledger.Deposit(ctx, user, coins(0))
	assert.True(t, apperror.IsValidation(err))
	_, err = f.ledger.Hold(ctx, user, coins(-5), nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestJournal_FilterAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 100)
	other := f.user(t, 0)

	hold, err := f.ledger.Hold(ctx, user, coins(25), nil)
	require.NoError(t, err)

	filter, err := ledger.ParseFilter("expense")
	require.NoError(t, err)
	expenses, total, err := f.ledger.Journal().List(ctx, user, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, hold.ID, expenses[0].ID)

	filter, err = ledger.ParseFilter("income")
	require.NoError(t, err)
	income, _, err := f.ledger.Journal().List(ctx, user, filter)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, valueobject.TransactionTypeDeposit, income[0].Type)

	_, err = f.ledger.Journal().Get(ctx, other, hold.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = ledger.ParseFilter("bonus")
	assert.True(t, apperror.IsValidation(err))
}
