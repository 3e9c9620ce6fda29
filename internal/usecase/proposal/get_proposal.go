package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type ProposalList struct {
	Proposals []*entity.Proposal
	Total     int
	Page      repository.Page
}

// GetProposalUseCase отдаёт предложение автору или владельцу задачи.
type GetProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	taskRepo     repository.TaskRepository
}

func NewGetProposalUseCase(proposalRepo repository.ProposalRepository, taskRepo repository.TaskRepository) *GetProposalUseCase {
	return &GetProposalUseCase{proposalRepo: proposalRepo, taskRepo: taskRepo}
}

func (uc *GetProposalUseCase) Execute(ctx context.Context, proposalID, viewerID uuid.UUID) (*entity.Proposal, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.IsOwnedBy(viewerID) {
		return proposal, nil
	}
	task, err := uc.taskRepo.FindByID(ctx, proposal.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(viewerID) {
		return nil, apperror.ErrForbidden
	}
	return proposal, nil
}

// ListTaskProposalsUseCase - предложения по задаче, видны только её владельцу.
type ListTaskProposalsUseCase struct {
	proposalRepo repository.ProposalRepository
	taskRepo     repository.TaskRepository
}

func NewListTaskProposalsUseCase(proposalRepo repository.ProposalRepository, taskRepo repository.TaskRepository) *ListTaskProposalsUseCase {
	return &ListTaskProposalsUseCase{proposalRepo: proposalRepo, taskRepo: taskRepo}
}

func (uc *ListTaskProposalsUseCase) Execute(ctx context.Context, taskID, requesterID uuid.UUID, status string, page repository.Page) (*ProposalList, error) {
	task, err := uc.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(requesterID) {
		return nil, apperror.ErrForbidden
	}
	return list(ctx, uc.proposalRepo, repository.ProposalFilter{TaskID: &taskID}, status, page)
}

type ListMyProposalsUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewListMyProposalsUseCase(proposalRepo repository.ProposalRepository) *ListMyProposalsUseCase {
	return &ListMyProposalsUseCase{proposalRepo: proposalRepo}
}

func (uc *ListMyProposalsUseCase) Execute(ctx context.Context, providerID uuid.UUID, status string, page repository.Page) (*ProposalList, error) {
	return list(ctx, uc.proposalRepo, repository.ProposalFilter{ProviderID: &providerID}, status, page)
}

// ListInboxUseCase - предложения по всем задачам заказчика.
type ListInboxUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewListInboxUseCase(proposalRepo repository.ProposalRepository) *ListInboxUseCase {
	return &ListInboxUseCase{proposalRepo: proposalRepo}
}

func (uc *ListInboxUseCase) Execute(ctx context.Context, requesterID uuid.UUID, status string, page repository.Page) (*ProposalList, error) {
	return list(ctx, uc.proposalRepo, repository.ProposalFilter{RequesterID: &requesterID}, status, page)
}

func list(ctx context.Context, repo repository.ProposalRepository, filter repository.ProposalFilter, status string, page repository.Page) (*ProposalList, error) {
	if status != "" {
		s, err := valueobject.NewProposalStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = s
	}
	filter.Page = page.Normalize()

	proposals, total, err := repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProposalList{Proposals: proposals, Total: total, Page: filter.Page}, nil
}
