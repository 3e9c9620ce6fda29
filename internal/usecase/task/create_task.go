package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type CreateTaskInput struct {
	RequesterID uuid.UUID
	Params      entity.TaskParams
}

// CreateTaskUseCase создаёт задачу в статусе draft.
type CreateTaskUseCase struct {
	taskRepo repository.TaskRepository
}

func NewCreateTaskUseCase(taskRepo repository.TaskRepository) *CreateTaskUseCase {
	return &CreateTaskUseCase{taskRepo: taskRepo}
}

func (uc *CreateTaskUseCase) Execute(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	task, err := entity.NewTask(input.RequesterID, input.Params, time.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать задачу")
	}
	return task, nil
}

type UpdateTaskInput struct {
	TaskID      uuid.UUID
	RequesterID uuid.UUID
	Params      entity.TaskParams
}

// UpdateTaskUseCase редактирует черновик задачи.
type UpdateTaskUseCase struct {
	tx       repository.Transactor
	taskRepo repository.TaskRepository
}

func NewUpdateTaskUseCase(tx repository.Transactor, taskRepo repository.TaskRepository) *UpdateTaskUseCase {
	return &UpdateTaskUseCase{tx: tx, taskRepo: taskRepo}
}

func (uc *UpdateTaskUseCase) Execute(ctx context.Context, input UpdateTaskInput) (*entity.Task, error) {
	var task *entity.Task
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = uc.taskRepo.LockForUpdate(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if !task.IsOwnedBy(input.RequesterID) {
			return apperror.ErrForbidden
		}
		if err := task.Update(input.Params, time.Now()); err != nil {
			return err
		}
		return uc.taskRepo.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
