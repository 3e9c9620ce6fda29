package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type GetTaskUseCase struct {
	taskRepo repository.TaskRepository
}

func NewGetTaskUseCase(taskRepo repository.TaskRepository) *GetTaskUseCase {
	return &GetTaskUseCase{taskRepo: taskRepo}
}

// Execute возвращает задачу. Черновик видит только владелец.
func (uc *GetTaskUseCase) Execute(ctx context.Context, taskID, viewerID uuid.UUID) (*entity.Task, error) {
	task, err := uc.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == valueobject.TaskStatusDraft && !task.IsOwnedBy(viewerID) {
		return nil, apperror.ErrTaskNotFound
	}
	return task, nil
}

type ListTasksInput struct {
	Status   string
	Category string
	Page     repository.Page
}

type TaskList struct {
	Tasks []*entity.Task
	Total int
	Page  repository.Page
}

// ListTasksUseCase - публичная лента задач, по умолчанию только открытые.
type ListTasksUseCase struct {
	taskRepo repository.TaskRepository
}

func NewListTasksUseCase(taskRepo repository.TaskRepository) *ListTasksUseCase {
	return &ListTasksUseCase{taskRepo: taskRepo}
}

func (uc *ListTasksUseCase) Execute(ctx context.Context, input ListTasksInput) (*TaskList, error) {
	filter := repository.TaskFilter{Status: valueobject.TaskStatusOpen, Page: input.Page.Normalize()}
	if input.Status != "" {
		status, err := valueobject.NewTaskStatus(input.Status)
		if err != nil {
			return nil, err
		}
		if status == valueobject.TaskStatusDraft {
			return nil, apperror.Validation("status", "черновики не публикуются в ленте")
		}
		filter.Status = status
	}
	if input.Category != "" {
		category, err := valueobject.NewCategory(input.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = category
	}
	return list(ctx, uc.taskRepo, filter)
}

type ListMyTasksUseCase struct {
	taskRepo repository.TaskRepository
}

func NewListMyTasksUseCase(taskRepo repository.TaskRepository) *ListMyTasksUseCase {
	return &ListMyTasksUseCase{taskRepo: taskRepo}
}

func (uc *ListMyTasksUseCase) Execute(ctx context.Context, requesterID uuid.UUID, status string, page repository.Page) (*TaskList, error) {
	filter := repository.TaskFilter{RequesterID: &requesterID, Page: page.Normalize()}
	if status != "" {
		s, err := valueobject.NewTaskStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = s
	}
	return list(ctx, uc.taskRepo, filter)
}

func list(ctx context.Context, repo repository.TaskRepository, filter repository.TaskFilter) (*TaskList, error) {
	tasks, total, err := repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &TaskList{Tasks: tasks, Total: total, Page: filter.Page}, nil
}
