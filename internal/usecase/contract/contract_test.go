package contract_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/event"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/timebank-backend/internal/ledger"
	"github.com/ignatzorin/timebank-backend/internal/logger"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
	"github.com/ignatzorin/timebank-backend/internal/usecase/contract"
)

type fixture struct {
	store     *memory.Store
	wallets   *memory.WalletRepository
	tasks     *memory.TaskRepository
	contracts *memory.ContractRepository
	ledger    *ledger.Ledger
	uc        *contract.TransitionContractUseCase

	mu     sync.Mutex
	events []event.ContractTransition
}

func newFixture() *fixture {
	logger.Silence()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		wallets:   memory.NewWalletRepository(store),
		tasks:     memory.NewTaskRepository(store),
		contracts: memory.NewContractRepository(store),
	}
	f.ledger = ledger.New(store, f.wallets, ledger.NewJournal(memory.NewTransactionRepository(store)))
	f.uc = contract.NewTransitionContractUseCase(store, f.contracts, f.tasks, f.ledger,
		event.PublisherFunc(func(_ context.Context, e event.ContractTransition) {
			f.mu.Lock()
			f.events = append(f.events, e)
			f.mu.Unlock()
		}))
	return f
}

func coins(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// fatalf покрывает *testing.T и *rapid.T.
type fatalf interface {
	Fatalf(format string, args ...any)
}

func (f *fixture) user(t fatalf, balance int64) uuid.UUID {
	id := uuid.New()
	ctx := context.Background()
	if err := f.wallets.Create(ctx, entity.NewWallet(id, time.Now())); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if balance > 0 {
		if _, err := f.ledger.Deposit(ctx, id, coins(balance)); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}
	return id
}

// contract создаёт задачу в статусе contracted и контракт draft/unfunded.
func (f *fixture) contract(t fatalf, requester, provider uuid.UUID, amount int64) *entity.Contract {
	ctx := context.Background()
	now := time.Now()
	task, err := entity.NewTask(requester, entity.TaskParams{
		Title:          "Proofread a thesis",
		Description:    "Forty pages of economics, British spelling, track changes please.",
		Budget:         coins(amount),
		Deadline:       now.Add(7 * 24 * time.Hour),
		RequiredSkills: []string{"Editing"},
		Category:       "Academic",
	}, now)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	p, err := entity.NewProposal(task.ID, provider, 5, coins(amount), "I can do it this week.", now)
	if err != nil {
		t.Fatalf("new proposal: %v", err)
	}
	if err := task.Publish(nil, now); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Accept(now); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := task.MarkContracted(now); err != nil {
		t.Fatalf("contracted: %v", err)
	}
	c, err := entity.NewContract(task, p, now)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	if err := f.tasks.Create(ctx, task); err != nil {
		t.Fatalf("store task: %v", err)
	}
	if err := f.contracts.Create(ctx, c); err != nil {
		t.Fatalf("store contract: %v", err)
	}
	return c
}

func (f *fixture) do(c *entity.Contract, actor uuid.UUID, op valueobject.ContractOperation) (*entity.Contract, error) {
	return f.uc.Execute(context.Background(), contract.TransitionInput{ContractID: c.ID, ActorID: actor, Operation: op})
}

func (f *fixture) wallet(t *testing.T, id uuid.UUID) *entity.Wallet {
	t.Helper()
	w, err := f.ledger.Balance(context.Background(), id)
	require.NoError(t, err)
	return w
}

func (f *fixture) journal(t *testing.T, id uuid.UUID) []*entity.Transaction {
	t.Helper()
	txs, _, err := f.ledger.Journal().List(context.Background(), id, repository.TransactionFilter{})
	require.NoError(t, err)
	return txs
}

func (f *fixture) taskStatus(t *testing.T, c *entity.Contract) valueobject.TaskStatus {
	t.Helper()
	task, err := f.tasks.FindByID(context.Background(), c.TaskID)
	require.NoError(t, err)
	return task.Status
}

func TestEscrowDeliverRelease(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 100)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)

	c, err := f.do(c, requester, valueobject.ContractOpEscrow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStatusActive, c.Status())
	assert.Equal(t, valueobject.PaymentPhaseEscrowed, c.Phase())
	assert.NotNil(t, c.Payment.EscrowedAt)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(60)))
	assert.True(t, w.Escrowed.Equal(coins(40)))

	txs := f.journal(t, requester)
	require.Len(t, txs, 2)
	hold := txs[0]
	assert.Equal(t, valueobject.TransactionTypeEscrowHold, hold.Type)
	assert.True(t, hold.Amount.Equal(coins(-40)))
	assert.True(t, hold.BalanceAfter.Equal(coins(60)))
	require.NotNil(t, hold.ContractID)
	assert.Equal(t, c.ID, *hold.ContractID)

	c, err = f.do(c, provider, valueobject.ContractOpDeliver)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStatusDelivered, c.Status())
	assert.Equal(t, valueobject.PaymentPhaseEscrowed, c.Phase())

	c, err = f.do(c, requester, valueobject.ContractOpRelease)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStatusCompleted, c.Status())
	assert.Equal(t, valueobject.PaymentPhaseReleased, c.Phase())

	assert.True(t, f.wallet(t, requester).Escrowed.IsZero())
	assert.True(t, f.wallet(t, requester).Available.Equal(coins(60)))
	assert.True(t, f.wallet(t, provider).Available.Equal(coins(40)))

	providerTxs := f.journal(t, provider)
	require.Len(t, providerTxs, 1)
	assert.Equal(t, valueobject.TransactionTypeRelease, providerTxs[0].Type)
	assert.True(t, providerTxs[0].Amount.Equal(coins(40)))
	// у заказчика отдельного списания при release нет
	assert.Len(t, f.journal(t, requester), 2)

	assert.Equal(t, valueobject.TaskStatusCompleted, f.taskStatus(t, c))

	require.Len(t, f.events, 3)
	assert.Equal(t, event.ContractEscrowed, f.events[0].Type)
	assert.Equal(t, valueobject.ContractStateDraft, f.events[0].FromState)
	assert.Equal(t, valueobject.ContractStateActive, f.events[0].ToState)
	assert.Equal(t, requester, f.events[0].ActorID)
	assert.Equal(t, event.ContractReleased, f.events[2].Type)
}

func TestEscrowRefund(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 100)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)

	_, err := f.do(c, requester, valueobject.ContractOpEscrow)
	require.NoError(t, err)

	c, err = f.do(c, requester, valueobject.ContractOpCancel)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStatusCancelled, c.Status())
	assert.Equal(t, valueobject.PaymentPhaseRefunded, c.Phase())
	assert.Equal(t, entity.CancelReasonRequester, c.CancelReason)
	assert.NotNil(t, c.Payment.RefundedAt)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(100)))
	assert.True(t, w.Escrowed.IsZero())

	txs := f.journal(t, requester)
	require.Len(t, txs, 3)
	assert.Equal(t, valueobject.TransactionTypeRefund, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(coins(40)))

	assert.Equal(t, valueobject.TaskStatusCancelled, f.taskStatus(t, c))
}

func TestCancelUnfundedMovesNoMoney(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 10)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)

	c, err := f.do(c, provider, valueobject.ContractOpCancel)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStateCancelledUnfunded, c.State)
	assert.Equal(t, entity.CancelReasonProvider, c.CancelReason)
	assert.Len(t, f.journal(t, requester), 1)
}

func TestEscrow_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 30)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)

	_, err := f.do(c, requester, valueobject.ContractOpEscrow)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientFunds(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "40", appErr.Details["required"])
	assert.Equal(t, "30", appErr.Details["available"])

	stored, err := f.contracts.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStateDraft, stored.State)
	assert.Len(t, f.journal(t, requester), 1)
	assert.Empty(t, f.events)
}

func TestDeliver_FromDraftIsInvalidState(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 100)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)

	_, err := f.do(c, provider, valueobject.ContractOpDeliver)
	assert.True(t, apperror.IsInvalidState(err))

	stored, err := f.contracts.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStateDraft, stored.State)

	_, err = f.do(c, requester, valueobject.ContractOpEscrow)
	require.NoError(t, err)
	_, err = f.do(c, provider, valueobject.ContractOpDeliver)
	require.NoError(t, err)
	_, err = f.do(c, provider, valueobject.ContractOpDeliver)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestRoleChecks(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 100)
	provider := f.user(t, 100)
	c := f.contract(t, requester, provider, 40)

	_, err := f.do(c, provider, valueobject.ContractOpEscrow)
	assert.True(t, apperror.IsForbidden(err))
	_, err = f.do(c, uuid.New(), valueobject.ContractOpCancel)
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.do(c, requester, valueobject.ContractOpEscrow)
	require.NoError(t, err)
	_, err = f.do(c, requester, valueobject.ContractOpDeliver)
	assert.True(t, apperror.IsForbidden(err))
	_, err = f.do(c, provider, valueobject.ContractOpDeliver)
	require.NoError(t, err)

	// после сдачи исполнитель отменить не может
	_, err = f.do(c, provider, valueobject.ContractOpCancel)
	assert.True(t, apperror.IsForbidden(err))
	_, err = f.do(c, provider, valueobject.ContractOpRelease)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDisputeExits(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 100)
	provider := f.user(t, 0)

	released := f.contract(t, requester, provider, 30)
	_, err := f.do(released, requester, valueobject.ContractOpEscrow)
	require.NoError(t, err)
	disputed, err := f.uc.Execute(context.Background(), contract.TransitionInput{
		ContractID: released.ID,
		ActorID:    provider,
		Operation:  valueobject.ContractOpDispute,
		Reason:     "  requirements changed mid-way  ",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStatusDisputed, disputed.Status())
	assert.Equal(t, valueobject.PaymentPhaseEscrowed, disputed.Phase())
	assert.Equal(t, "requirements changed mid-way", disputed.DisputeReason)

	done, err := f.do(released, requester, valueobject.ContractOpRelease)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStateCompleted, done.State)
	assert.True(t, f.wallet(t, provider).Available.Equal(coins(30)))

	refunded := f.contract(t, requester, provider, 50)
	_, err = f.do(refunded, requester, valueobject.ContractOpEscrow)
	require.NoError(t, err)
	_, err = f.do(refunded, requester, valueobject.ContractOpDispute)
	require.NoError(t, err)
	_, err = f.do(refunded, requester, valueobject.ContractOpDispute)
	assert.True(t, apperror.IsInvalidState(err))
	cancelled, err := f.do(refunded, provider, valueobject.ContractOpCancel)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStateCancelledRefunded, cancelled.State)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(70)))
	assert.True(t, w.Escrowed.IsZero())
}

func TestEscrow_ConcurrentCallsOnlyOneSucceeds(t *testing.T) {
	f := newFixture()
	requester := f.user(t, 1000)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.do(c, requester, valueobject.ContractOpEscrow)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.IsInvalidState(err), err)
	}
	assert.Equal(t, 1, succeeded)

	w := f.wallet(t, requester)
	assert.True(t, w.Available.Equal(coins(960)))
	assert.True(t, w.Escrowed.Equal(coins(40)))
}

func TestGetAndListContracts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requester := f.user(t, 0)
	provider := f.user(t, 0)
	c := f.contract(t, requester, provider, 40)
	f.contract(t, provider, requester, 20)

	got, err := contract.NewGetContractUseCase(f.contracts).Execute(ctx, c.ID, provider)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = contract.NewGetContractUseCase(f.contracts).Execute(ctx, c.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	list := contract.NewListContractsUseCase(f.contracts)
	all, err := list.Execute(ctx, contract.ListContractsInput{UserID: requester})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	asRequester, err := list.Execute(ctx, contract.ListContractsInput{UserID: requester, Role: "requester", Status: "draft"})
	require.NoError(t, err)
	require.Equal(t, 1, asRequester.Total)
	assert.Equal(t, c.ID, asRequester.Contracts[0].ID)

	_, err = list.Execute(ctx, contract.ListContractsInput{UserID: requester, Role: "owner"})
	assert.True(t, apperror.IsValidation(err))
}
