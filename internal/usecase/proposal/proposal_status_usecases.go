package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// lockOwned блокирует задачу предложения и само предложение и проверяет, что действует владелец задачи.
func lockOwned(ctx context.Context, tasks repository.TaskRepository, proposals repository.ProposalRepository, proposalID, requesterID uuid.UUID) (*entity.Task, *entity.Proposal, error) {
	probe, err := proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}
	task, err := tasks.LockForUpdate(ctx, probe.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if !task.IsOwnedBy(requesterID) {
		return nil, nil, apperror.ErrForbidden
	}
	proposal, err := proposals.LockForUpdate(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}
	return task, proposal, nil
}

type ShortlistProposalUseCase struct {
	tx           repository.Transactor
	proposalRepo repository.ProposalRepository
	taskRepo     repository.TaskRepository
}

func NewShortlistProposalUseCase(tx repository.Transactor, proposalRepo repository.ProposalRepository, taskRepo repository.TaskRepository) *ShortlistProposalUseCase {
	return &ShortlistProposalUseCase{tx: tx, proposalRepo: proposalRepo, taskRepo: taskRepo}
}

func (uc *ShortlistProposalUseCase) Execute(ctx context.Context, proposalID, requesterID uuid.UUID) (*entity.Proposal, error) {
	var proposal *entity.Proposal
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, p, err := lockOwned(ctx, uc.taskRepo, uc.proposalRepo, proposalID, requesterID)
		if err != nil {
			return err
		}
		if err := task.EnsureOpen(); err != nil {
			return err
		}
		if err := p.Shortlist(time.Now()); err != nil {
			return err
		}
		proposal = p
		return uc.proposalRepo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

// RejectProposalUseCase - явный отказ заказчика, причина declined.
type RejectProposalUseCase struct {
	tx           repository.Transactor
	proposalRepo repository.ProposalRepository
	taskRepo     repository.TaskRepository
}

func NewRejectProposalUseCase(tx repository.Transactor, proposalRepo repository.ProposalRepository, taskRepo repository.TaskRepository) *RejectProposalUseCase {
	return &RejectProposalUseCase{tx: tx, proposalRepo: proposalRepo, taskRepo: taskRepo}
}

func (uc *RejectProposalUseCase) Execute(ctx context.Context, proposalID, requesterID uuid.UUID) (*entity.Proposal, error) {
	var proposal *entity.Proposal
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, p, err := lockOwned(ctx, uc.taskRepo, uc.proposalRepo, proposalID, requesterID)
		if err != nil {
			return err
		}
		if err := p.Reject(valueobject.RejectReasonDeclined, time.Now()); err != nil {
			return err
		}
		proposal = p
		return uc.proposalRepo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

type WithdrawProposalUseCase struct {
	tx           repository.Transactor
	proposalRepo repository.ProposalRepository
}

func NewWithdrawProposalUseCase(tx repository.Transactor, proposalRepo repository.ProposalRepository) *WithdrawProposalUseCase {
	return &WithdrawProposalUseCase{tx: tx, proposalRepo: proposalRepo}
}

func (uc *WithdrawProposalUseCase) Execute(ctx context.Context, proposalID, providerID uuid.UUID) (*entity.Proposal, error) {
	var proposal *entity.Proposal
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := uc.proposalRepo.LockForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if !p.IsOwnedBy(providerID) {
			return apperror.ErrForbidden
		}
		if err := p.Withdraw(time.Now()); err != nil {
			return err
		}
		proposal = p
		return uc.proposalRepo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}
