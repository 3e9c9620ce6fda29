package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type ContractRepository struct {
	s *Store
}

func NewContractRepository(s *Store) *ContractRepository {
	return &ContractRepository{s: s}
}

func (r *ContractRepository) Create(ctx context.Context, c *entity.Contract) error {
	for _, existing := range r.view(ctx) {
		if existing.ProposalID == c.ProposalID {
			return apperror.New(apperror.ErrCodeConflict, "контракт по этому предложению уже создан")
		}
	}
	r.s.stage(ctx, contractKey(c.ID), c.Clone())
	return nil
}

func (r *ContractRepository) Update(ctx context.Context, c *entity.Contract) error {
	if _, err := r.FindByID(ctx, c.ID); err != nil {
		return err
	}
	r.s.stage(ctx, contractKey(c.ID), c.Clone())
	return nil
}

func (r *ContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	if c, ok := staged[*entity.Contract](ctx, contractKey(id)); ok {
		return c.Clone(), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, apperror.ErrContractNotFound
	}
	return c.Clone(), nil
}

func (r *ContractRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	if err := r.s.lock(ctx, contractKey(id)); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ContractRepository) view(ctx context.Context) []*entity.Contract {
	rows := make(map[uuid.UUID]*entity.Contract)
	r.s.mu.RLock()
	for id, c := range r.s.contracts {
		rows[id] = c
	}
	r.s.mu.RUnlock()
	for _, c := range stagedAll[*entity.Contract](ctx) {
		rows[c.ID] = c
	}

	out := make([]*entity.Contract, 0, len(rows))
	for _, c := range rows {
		out = append(out, c)
	}
	return out
}

func (r *ContractRepository) List(ctx context.Context, filter repository.ContractFilter) ([]*entity.Contract, int, error) {
	var matched []*entity.Contract
	for _, c := range r.view(ctx) {
		role, ok := c.RoleOf(filter.UserID)
		if !ok {
			continue
		}
		if filter.Role != "" && role != filter.Role {
			continue
		}
		if filter.Status != "" && c.Status() != filter.Status {
			continue
		}
		matched = append(matched, c.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := filter.Page.Normalize()
	return paginate(matched, page.Limit, page.Offset), len(matched), nil
}
