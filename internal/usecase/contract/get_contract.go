package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// GetContractUseCase отдаёт контракт только его участникам.
type GetContractUseCase struct {
	contractRepo repository.ContractRepository
}

func NewGetContractUseCase(contractRepo repository.ContractRepository) *GetContractUseCase {
	return &GetContractUseCase{contractRepo: contractRepo}
}

func (uc *GetContractUseCase) Execute(ctx context.Context, contractID, viewerID uuid.UUID) (*entity.Contract, error) {
	contract, err := uc.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParticipant(viewerID) {
		return nil, apperror.ErrForbidden
	}
	return contract, nil
}

type ListContractsInput struct {
	UserID uuid.UUID
	Role   string
	Status string
	Page   repository.Page
}

type ContractList struct {
	Contracts []*entity.Contract
	Total     int
	Page      repository.Page
}

type ListContractsUseCase struct {
	contractRepo repository.ContractRepository
}

func NewListContractsUseCase(contractRepo repository.ContractRepository) *ListContractsUseCase {
	return &ListContractsUseCase{contractRepo: contractRepo}
}

func (uc *ListContractsUseCase) Execute(ctx context.Context, input ListContractsInput) (*ContractList, error) {
	filter := repository.ContractFilter{UserID: input.UserID, Page: input.Page.Normalize()}

	switch role := entity.ContractRole(input.Role); role {
	case "", entity.RoleRequester, entity.RoleProvider:
		filter.Role = role
	default:
		return nil, apperror.Validation("role", "роль должна быть requester или provider")
	}

	if input.Status != "" {
		status := valueobject.ContractStatus(input.Status)
		if !status.IsValid() {
			return nil, apperror.Validation("status", "некорректный статус контракта")
		}
		filter.Status = status
	}

	contracts, total, err := uc.contractRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ContractList{Contracts: contracts, Total: total, Page: filter.Page}, nil
}
