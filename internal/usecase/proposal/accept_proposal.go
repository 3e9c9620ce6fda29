package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/event"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

type AcceptResult struct {
	Proposal *entity.Proposal
	Contract *entity.Contract
}

// AcceptProposalUseCase принимает предложение. В одной транзакции остальные активные
// предложения задачи отклоняются с причиной superseded, задача переходит в contracted
// и создаётся контракт в состоянии draft/unfunded.
type AcceptProposalUseCase struct {
	tx           repository.Transactor
	proposalRepo repository.ProposalRepository
	taskRepo     repository.TaskRepository
	contractRepo repository.ContractRepository
	publisher    event.Publisher
}

func NewAcceptProposalUseCase(
	tx repository.Transactor,
	proposalRepo repository.ProposalRepository,
	taskRepo repository.TaskRepository,
	contractRepo repository.ContractRepository,
	publisher event.Publisher,
) *AcceptProposalUseCase {
	if publisher == nil {
		publisher = event.Nop
	}
	return &AcceptProposalUseCase{
		tx:           tx,
		proposalRepo: proposalRepo,
		taskRepo:     taskRepo,
		contractRepo: contractRepo,
		publisher:    publisher,
	}
}

func (uc *AcceptProposalUseCase) Execute(ctx context.Context, proposalID, requesterID uuid.UUID) (*AcceptResult, error) {
	var result AcceptResult
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, proposal, err := lockOwned(ctx, uc.taskRepo, uc.proposalRepo, proposalID, requesterID)
		if err != nil {
			return err
		}
		if err := task.EnsureOpen(); err != nil {
			return err
		}

		now := time.Now()
		if err := proposal.Accept(now); err != nil {
			return err
		}
		if err := uc.proposalRepo.Update(ctx, proposal); err != nil {
			return err
		}

		competing, err := uc.proposalRepo.LockActiveByTask(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, other := range competing {
			if other.ID == proposal.ID {
				continue
			}
			if err := other.Reject(valueobject.RejectReasonSuperseded, now); err != nil {
				return err
			}
			if err := uc.proposalRepo.Update(ctx, other); err != nil {
				return err
			}
		}

		if err := task.MarkContracted(now); err != nil {
			return err
		}
		if err := uc.taskRepo.Update(ctx, task); err != nil {
			return err
		}

		contract, err := entity.NewContract(task, proposal, now)
		if err != nil {
			return err
		}
		if err := uc.contractRepo.Create(ctx, contract); err != nil {
			return err
		}

		result = AcceptResult{Proposal: proposal, Contract: contract}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := result.Contract
	logger.Log.WithFields(logrus.Fields{
		"contract_id": c.ID,
		"task_id":     c.TaskID,
		"proposal_id": c.ProposalID,
		"actor_id":    requesterID,
	}).Info("contract created")

	uc.publisher.Publish(ctx, event.ContractTransition{
		Type:        event.ContractCreated,
		ContractID:  c.ID,
		TaskID:      c.TaskID,
		RequesterID: c.RequesterID,
		ProviderID:  c.ProviderID,
		ToState:     c.State,
		ActorID:     requesterID,
		Timestamp:   c.CreatedAt,
	})
	return &result, nil
}
