package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/event"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

// Escrow - операции ledger, которые нужны контракту.
type Escrow interface {
	Hold(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, contractID *uuid.UUID) (*entity.Transaction, error)
	Release(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, contractID *uuid.UUID) (*entity.Transaction, error)
	Refund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, contractID *uuid.UUID) (*entity.Transaction, error)
}

type TransitionInput struct {
	ContractID uuid.UUID
	ActorID    uuid.UUID
	Operation  valueobject.ContractOperation
	// Reason учитывается только для dispute.
	Reason string
}

// TransitionContractUseCase - единственная точка изменения совместного состояния контракта.
// Контракт блокируется на всё время перехода, статус, фаза платежа, ledger и журнал
// меняются в одной транзакции. Событие публикуется после фиксации.
type TransitionContractUseCase struct {
	tx           repository.Transactor
	contractRepo repository.ContractRepository
	taskRepo     repository.TaskRepository
	escrow       Escrow
	publisher    event.Publisher
	now          func() time.Time
}

func NewTransitionContractUseCase(
	tx repository.Transactor,
	contractRepo repository.ContractRepository,
	taskRepo repository.TaskRepository,
	escrow Escrow,
	publisher event.Publisher,
) *TransitionContractUseCase {
	if publisher == nil {
		publisher = event.Nop
	}
	return &TransitionContractUseCase{
		tx:           tx,
		contractRepo: contractRepo,
		taskRepo:     taskRepo,
		escrow:       escrow,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (uc *TransitionContractUseCase) Execute(ctx context.Context, input TransitionInput) (*entity.Contract, error) {
	var (
		contract *entity.Contract
		from     valueobject.ContractState
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := uc.contractRepo.LockForUpdate(ctx, input.ContractID)
		if err != nil {
			return err
		}
		next, err := c.Plan(input.Operation, input.ActorID)
		if err != nil {
			return err
		}

		from = c.State
		if err := uc.moveFunds(ctx, c, input.Operation); err != nil {
			return err
		}

		now := uc.now()
		c.Apply(input.Operation, next, input.ActorID, input.Reason, now)
		if err := uc.contractRepo.Update(ctx, c); err != nil {
			return err
		}
		if err := uc.closeTask(ctx, c, input.Operation, now); err != nil {
			return err
		}
		contract = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"from":        from,
		"to":          contract.State,
		"actor_id":    input.ActorID,
	}).Info("contract transition")

	uc.publisher.Publish(ctx, event.ContractTransition{
		Type:        event.TypeFor(input.Operation),
		ContractID:  contract.ID,
		TaskID:      contract.TaskID,
		RequesterID: contract.RequesterID,
		ProviderID:  contract.ProviderID,
		FromState:   from,
		ToState:     contract.State,
		ActorID:     input.ActorID,
		Timestamp:   contract.UpdatedAt,
	})
	return contract, nil
}

// moveFunds выполняет эффект перехода на ledger. Ошибка откатывает весь переход.
func (uc *TransitionContractUseCase) moveFunds(ctx context.Context, c *entity.Contract, op valueobject.ContractOperation) error {
	amount := c.Payment.Amount
	var err error
	switch op {
	case valueobject.ContractOpEscrow:
		_, err = uc.escrow.Hold(ctx, c.RequesterID, amount, &c.ID)
	case valueobject.ContractOpRelease:
		_, err = uc.escrow.Release(ctx, c.RequesterID, c.ProviderID, amount, &c.ID)
	case valueobject.ContractOpCancel:
		if c.State.IsFunded() {
			_, err = uc.escrow.Refund(ctx, c.RequesterID, amount, &c.ID)
		}
	}
	return err
}

func (uc *TransitionContractUseCase) closeTask(ctx context.Context, c *entity.Contract, op valueobject.ContractOperation, now time.Time) error {
	if op != valueobject.ContractOpRelease && op != valueobject.ContractOpCancel {
		return nil
	}
	task, err := uc.taskRepo.LockForUpdate(ctx, c.TaskID)
	if err != nil {
		return err
	}
	if op == valueobject.ContractOpRelease {
		err = task.Complete(now)
	} else {
		err = task.CloseAfterContractCancelled(now)
	}
	if err != nil {
		return err
	}
	return uc.taskRepo.Update(ctx, task)
}
