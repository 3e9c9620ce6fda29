package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type SubmitProposalInput struct {
	TaskID         uuid.UUID
	ProviderID     uuid.UUID
	EstimatedHours int
	BidAmount      decimal.Decimal
	Message        string
}

// SubmitProposalUseCase создаёт предложение и увеличивает счётчик предложений задачи.
type SubmitProposalUseCase struct {
	tx           repository.Transactor
	proposalRepo repository.ProposalRepository
	taskRepo     repository.TaskRepository
}

func NewSubmitProposalUseCase(tx repository.Transactor, proposalRepo repository.ProposalRepository, taskRepo repository.TaskRepository) *SubmitProposalUseCase {
	return &SubmitProposalUseCase{
		tx:           tx,
		proposalRepo: proposalRepo,
		taskRepo:     taskRepo,
	}
}

func (uc *SubmitProposalUseCase) Execute(ctx context.Context, input SubmitProposalInput) (*entity.Proposal, error) {
	var proposal *entity.Proposal
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := uc.taskRepo.LockForUpdate(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if err := task.EnsureOpen(); err != nil {
			return err
		}
		if task.IsOwnedBy(input.ProviderID) {
			return apperror.New(apperror.ErrCodeBadRequest, "нельзя откликнуться на собственную задачу")
		}

		exists, err := uc.proposalRepo.HasActive(ctx, task.ID, input.ProviderID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrDuplicateProposal
		}

		now := time.Now()
		proposal, err = entity.NewProposal(task.ID, input.ProviderID, input.EstimatedHours, input.BidAmount, input.Message, now)
		if err != nil {
			return err
		}
		if err := uc.proposalRepo.Create(ctx, proposal); err != nil {
			return err
		}

		task.IncrementProposals(now)
		return uc.taskRepo.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}
