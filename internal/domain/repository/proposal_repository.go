package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entity.Proposal) error
	Update(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	// LockForUpdate читает предложение и блокирует его до конца транзакции.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	// LockActiveByTask блокирует все нетерминальные предложения задачи.
	LockActiveByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.Proposal, error)
	HasActive(ctx context.Context, taskID, providerID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ProposalFilter) ([]*entity.Proposal, int, error)
	// FindStaleActive возвращает id нетерминальных предложений, созданных раньше before.
	FindStaleActive(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

// ProposalFilter: ровно одно из TaskID, ProviderID, RequesterID задаёт выборку.
type ProposalFilter struct {
	TaskID      *uuid.UUID
	ProviderID  *uuid.UUID
	RequesterID *uuid.UUID
	Status      valueobject.ProposalStatus
	Page
}
