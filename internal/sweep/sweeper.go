// Package sweep переводит просроченные задачи и предложения в expired.
// Повторный запуск ничего не меняет, поэтому расписание может быть любым.
package sweep

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

const DefaultBatchSize = 100

type Report struct {
	TasksExpired     int
	ProposalsExpired int
}

type Sweeper struct {
	tx           repository.Transactor
	taskRepo     repository.TaskRepository
	proposalRepo repository.ProposalRepository
	proposalTTL  time.Duration
	batchSize    int
}

// NewSweeper: proposalTTL == 0 отключает истечение предложений по возрасту.
func NewSweeper(tx repository.Transactor, taskRepo repository.TaskRepository, proposalRepo repository.ProposalRepository, proposalTTL time.Duration, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Sweeper{
		tx:           tx,
		taskRepo:     taskRepo,
		proposalRepo: proposalRepo,
		proposalTTL:  proposalTTL,
		batchSize:    batchSize,
	}
}

// Run обрабатывает не больше batchSize задач и batchSize предложений за вызов.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (Report, error) {
	var report Report

	taskIDs, err := s.taskRepo.FindOverdueOpen(ctx, now, s.batchSize)
	if err != nil {
		return report, err
	}
	for _, id := range taskIDs {
		expired, proposals, err := s.expireTask(ctx, id, now)
		if err != nil {
			return report, err
		}
		if expired {
			report.TasksExpired++
		}
		report.ProposalsExpired += proposals
	}

	if s.proposalTTL > 0 {
		staleIDs, err := s.proposalRepo.FindStaleActive(ctx, now.Add(-s.proposalTTL), s.batchSize)
		if err != nil {
			return report, err
		}
		for _, id := range staleIDs {
			expired, err := s.expireProposal(ctx, id, now)
			if err != nil {
				return report, err
			}
			if expired {
				report.ProposalsExpired++
			}
		}
	}

	if report.TasksExpired > 0 || report.ProposalsExpired > 0 {
		logger.Log.WithFields(logrus.Fields{
			"tasks_expired":     report.TasksExpired,
			"proposals_expired": report.ProposalsExpired,
		}).Info("expiry sweep")
	}
	return report, nil
}

func (s *Sweeper) expireTask(ctx context.Context, id uuid.UUID, now time.Time) (bool, int, error) {
	var (
		expired   bool
		proposals int
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.taskRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// между выборкой и блокировкой задачу могли принять или отменить
		if !task.Expire(now) {
			return nil
		}
		if err := s.taskRepo.Update(ctx, task); err != nil {
			return err
		}
		expired = true

		active, err := s.proposalRepo.LockActiveByTask(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, p := range active {
			if err := p.Expire(now); err != nil {
				return err
			}
			if err := s.proposalRepo.Update(ctx, p); err != nil {
				return err
			}
			proposals++
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return expired, proposals, nil
}

func (s *Sweeper) expireProposal(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var expired bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.proposalRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.IsTerminal() {
			return nil
		}
		if err := p.Expire(now); err != nil {
			return err
		}
		expired = true
		return s.proposalRepo.Update(ctx, p)
	})
	return expired, err
}
