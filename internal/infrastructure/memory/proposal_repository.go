package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type ProposalRepository struct {
	s *Store
}

func NewProposalRepository(s *Store) *ProposalRepository {
	return &ProposalRepository{s: s}
}

func (r *ProposalRepository) Create(ctx context.Context, p *entity.Proposal) error {
	active, err := r.HasActive(ctx, p.TaskID, p.ProviderID)
	if err != nil {
		return err
	}
	if active {
		return apperror.ErrDuplicateProposal
	}
	r.s.stage(ctx, proposalKey(p.ID), p.Clone())
	return nil
}

func (r *ProposalRepository) Update(ctx context.Context, p *entity.Proposal) error {
	if _, err := r.FindByID(ctx, p.ID); err != nil {
		return err
	}
	r.s.stage(ctx, proposalKey(p.ID), p.Clone())
	return nil
}

func (r *ProposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	if p, ok := staged[*entity.Proposal](ctx, proposalKey(id)); ok {
		return p.Clone(), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.proposals[id]
	if !ok {
		return nil, apperror.ErrProposalNotFound
	}
	return p.Clone(), nil
}

func (r *ProposalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	if err := r.s.lock(ctx, proposalKey(id)); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ProposalRepository) view(ctx context.Context) []*entity.Proposal {
	rows := make(map[uuid.UUID]*entity.Proposal)
	r.s.mu.RLock()
	for id, p := range r.s.proposals {
		rows[id] = p
	}
	r.s.mu.RUnlock()
	for _, p := range stagedAll[*entity.Proposal](ctx) {
		rows[p.ID] = p
	}

	out := make([]*entity.Proposal, 0, len(rows))
	for _, p := range rows {
		out = append(out, p)
	}
	return out
}

func (r *ProposalRepository) LockActiveByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.Proposal, error) {
	var ids []uuid.UUID
	for _, p := range r.view(ctx) {
		if p.TaskID == taskID && !p.IsTerminal() {
			ids = append(ids, p.ID)
		}
	}

	var locked []*entity.Proposal
	for _, id := range sortedIDs(ids) {
		p, err := r.LockForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		// пока ждали блокировку, предложение могли отозвать
		if !p.IsTerminal() {
			locked = append(locked, p)
		}
	}
	return locked, nil
}

func (r *ProposalRepository) HasActive(ctx context.Context, taskID, providerID uuid.UUID) (bool, error) {
	for _, p := range r.view(ctx) {
		if p.TaskID == taskID && p.ProviderID == providerID && !p.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProposalRepository) List(ctx context.Context, filter repository.ProposalFilter) ([]*entity.Proposal, int, error) {
	var requesterTasks map[uuid.UUID]struct{}
	if filter.RequesterID != nil {
		tasks := NewTaskRepository(r.s).view(ctx)
		requesterTasks = make(map[uuid.UUID]struct{})
		for _, t := range tasks {
			if t.RequesterID == *filter.RequesterID {
				requesterTasks[t.ID] = struct{}{}
			}
		}
	}

	var matched []*entity.Proposal
	for _, p := range r.view(ctx) {
		if filter.TaskID != nil && p.TaskID != *filter.TaskID {
			continue
		}
		if filter.ProviderID != nil && p.ProviderID != *filter.ProviderID {
			continue
		}
		if requesterTasks != nil {
			if _, ok := requesterTasks[p.TaskID]; !ok {
				continue
			}
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		matched = append(matched, p.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := filter.Page.Normalize()
	return paginate(matched, page.Limit, page.Offset), len(matched), nil
}

func (r *ProposalRepository) FindStaleActive(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	var stale []*entity.Proposal
	for _, p := range r.view(ctx) {
		if !p.IsTerminal() && p.CreatedAt.Before(before) {
			stale = append(stale, p)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return stale[i].CreatedAt.Before(stale[j].CreatedAt)
	})

	ids := make([]uuid.UUID, 0, len(stale))
	for _, p := range paginate(stale, limit, 0) {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
