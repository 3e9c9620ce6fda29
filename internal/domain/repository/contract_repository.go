package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
)

// ContractRepository хранит контракт и его платёж как один агрегат.
type ContractRepository interface {
	Create(ctx context.Context, contract *entity.Contract) error
	Update(ctx context.Context, contract *entity.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	List(ctx context.Context, filter ContractFilter) ([]*entity.Contract, int, error)
}

// ContractFilter выбирает контракты участника. Пустая Role - обе роли.
type ContractFilter struct {
	UserID uuid.UUID
	Role   entity.ContractRole
	Status valueobject.ContractStatus
	Page
}
