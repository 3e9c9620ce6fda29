package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
	"github.com/ignatzorin/timebank-backend/internal/pricing"
)

// PublishTaskUseCase переводит задачу draft → open.
// При включённой проверке бюджет сравнивается с минимальной ценой оракула.
type PublishTaskUseCase struct {
	tx           repository.Transactor
	taskRepo     repository.TaskRepository
	oracle       pricing.Oracle
	floorEnabled bool
}

func NewPublishTaskUseCase(tx repository.Transactor, taskRepo repository.TaskRepository, oracle pricing.Oracle, floorEnabled bool) *PublishTaskUseCase {
	return &PublishTaskUseCase{
		tx:           tx,
		taskRepo:     taskRepo,
		oracle:       oracle,
		floorEnabled: floorEnabled,
	}
}

func (uc *PublishTaskUseCase) Execute(ctx context.Context, taskID, requesterID uuid.UUID) (*entity.Task, error) {
	var task *entity.Task
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = uc.taskRepo.LockForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if !task.IsOwnedBy(requesterID) {
			return apperror.ErrForbidden
		}

		floor, err := uc.floor(ctx, task)
		if err != nil {
			return err
		}
		if err := task.Publish(floor, time.Now()); err != nil {
			return err
		}
		return uc.taskRepo.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *PublishTaskUseCase) floor(ctx context.Context, task *entity.Task) (*decimal.Decimal, error) {
	if !uc.floorEnabled || uc.oracle == nil {
		return nil, nil
	}
	rec, err := uc.oracle.Recommend(ctx, pricing.Input{
		Category:   task.Category,
		Skills:     task.RequiredSkills,
		Complexity: task.Complexity,
		Urgency:    task.Urgency,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить минимальную цену")
	}
	return &rec.Floor, nil
}

// CancelTaskUseCase отменяет задачу до заключения контракта.
type CancelTaskUseCase struct {
	tx           repository.Transactor
	taskRepo     repository.TaskRepository
	proposalRepo repository.ProposalRepository
}

func NewCancelTaskUseCase(tx repository.Transactor, taskRepo repository.TaskRepository, proposalRepo repository.ProposalRepository) *CancelTaskUseCase {
	return &CancelTaskUseCase{tx: tx, taskRepo: taskRepo, proposalRepo: proposalRepo}
}

func (uc *CancelTaskUseCase) Execute(ctx context.Context, taskID, requesterID uuid.UUID) (*entity.Task, error) {
	var task *entity.Task
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = uc.taskRepo.LockForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if !task.IsOwnedBy(requesterID) {
			return apperror.ErrForbidden
		}

		now := time.Now()
		if err := task.Cancel(now); err != nil {
			return err
		}
		if err := uc.taskRepo.Update(ctx, task); err != nil {
			return err
		}

		// открытые предложения закрываются вместе с задачей
		proposals, err := uc.proposalRepo.LockActiveByTask(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, p := range proposals {
			if err := p.Expire(now); err != nil {
				return err
			}
			if err := uc.proposalRepo.Update(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
