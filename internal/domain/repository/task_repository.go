package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
)

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entity.Task, int, error)
	// FindOverdueOpen возвращает id открытых задач с дедлайном раньше now.
	FindOverdueOpen(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type TaskFilter struct {
	RequesterID *uuid.UUID
	Status      valueobject.TaskStatus
	Category    valueobject.Category
	Page
}
