package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type TaskRepository struct {
	s *Store
}

func NewTaskRepository(s *Store) *TaskRepository {
	return &TaskRepository{s: s}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	r.s.stage(ctx, taskKey(task.ID), task.Clone())
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	if _, err := r.FindByID(ctx, task.ID); err != nil {
		return err
	}
	r.s.stage(ctx, taskKey(task.ID), task.Clone())
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	if t, ok := staged[*entity.Task](ctx, taskKey(id)); ok {
		return t.Clone(), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, apperror.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (r *TaskRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	if err := r.s.lock(ctx, taskKey(id)); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *TaskRepository) view(ctx context.Context) []*entity.Task {
	rows := make(map[uuid.UUID]*entity.Task)
	r.s.mu.RLock()
	for id, t := range r.s.tasks {
		rows[id] = t
	}
	r.s.mu.RUnlock()
	for _, t := range stagedAll[*entity.Task](ctx) {
		rows[t.ID] = t
	}

	out := make([]*entity.Task, 0, len(rows))
	for _, t := range rows {
		out = append(out, t)
	}
	return out
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*entity.Task, int, error) {
	var matched []*entity.Task
	for _, t := range r.view(ctx) {
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		matched = append(matched, t.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := filter.Page.Normalize()
	return paginate(matched, page.Limit, page.Offset), len(matched), nil
}

func (r *TaskRepository) FindOverdueOpen(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var overdue []*entity.Task
	for _, t := range r.view(ctx) {
		if t.Status == valueobject.TaskStatusOpen && t.IsOverdue(now) {
			overdue = append(overdue, t)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].Deadline.Before(overdue[j].Deadline)
	})

	ids := make([]uuid.UUID, 0, len(overdue))
	for _, t := range paginate(overdue, limit, 0) {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
