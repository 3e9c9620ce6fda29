package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type UserRepository struct {
	s *Store
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{s: s}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.s.lock(ctx, emailKey(user.Email)); err != nil {
		return err
	}
	if _, err := r.FindByEmail(ctx, user.Email); err == nil {
		return apperror.ErrEmailTaken
	}
	cp := *user
	r.s.stage(ctx, userKey(user.ID), &cp)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := staged[*entity.User](ctx, userKey(id)); ok {
		cp := *u
		return &cp, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range stagedAll[*entity.User](ctx) {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	r.s.mu.RLock()
	id, ok := r.s.emails[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

type WalletRepository struct {
	s *Store
}

func NewWalletRepository(s *Store) *WalletRepository {
	return &WalletRepository{s: s}
}

func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	r.s.stage(ctx, walletKey(wallet.UserID), wallet.Clone())
	return nil
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	if w, ok := staged[*entity.Wallet](ctx, walletKey(userID)); ok {
		return w.Clone(), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, apperror.ErrWalletNotFound
	}
	return w.Clone(), nil
}

func (r *WalletRepository) LockForUpdate(ctx context.Context, userIDs ...uuid.UUID) (map[uuid.UUID]*entity.Wallet, error) {
	result := make(map[uuid.UUID]*entity.Wallet, len(userIDs))
	for _, id := range sortedIDs(userIDs) {
		if _, ok := result[id]; ok {
			continue
		}
		if err := r.s.lock(ctx, walletKey(id)); err != nil {
			return nil, err
		}
		w, err := r.FindByUserID(ctx, id)
		if err != nil {
			return nil, err
		}
		result[id] = w
	}
	return result, nil
}

func (r *WalletRepository) Update(ctx context.Context, wallet *entity.Wallet) error {
	if _, err := r.FindByUserID(ctx, wallet.UserID); err != nil {
		return err
	}
	r.s.stage(ctx, walletKey(wallet.UserID), wallet.Clone())
	return nil
}

type TransactionRepository struct {
	s *Store
}

func NewTransactionRepository(s *Store) *TransactionRepository {
	return &TransactionRepository{s: s}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	r.s.mu.Lock()
	r.s.nextTxID++
	tx.ID = r.s.nextTxID
	r.s.mu.Unlock()

	r.s.stage(ctx, txKey(tx.ID), tx.Clone())
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	if t, ok := staged[*entity.Transaction](ctx, txKey(id)); ok {
		return t.Clone(), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.txs[id]
	if !ok {
		return nil, apperror.ErrTransactionNotFound
	}
	return t.Clone(), nil
}

func (r *TransactionRepository) LockForUpdate(ctx context.Context, id int64) (*entity.Transaction, error) {
	if err := r.s.lock(ctx, txKey(id)); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx *entity.Transaction) error {
	current, err := r.FindByID(ctx, tx.ID)
	if err != nil {
		return err
	}
	current.Status = tx.Status
	current.CompletedAt = tx.CompletedAt
	r.s.stage(ctx, txKey(tx.ID), current)
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	rows := make(map[int64]*entity.Transaction)
	r.s.mu.RLock()
	for id, t := range r.s.txs {
		if t.UserID == userID {
			rows[id] = t
		}
	}
	r.s.mu.RUnlock()
	for _, t := range stagedAll[*entity.Transaction](ctx) {
		if t.UserID == userID {
			rows[t.ID] = t
		}
	}

	var matched []*entity.Transaction
	for _, t := range rows {
		if !matchTransaction(t, filter) {
			continue
		}
		matched = append(matched, t.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	page := filter.Page.Normalize()
	return paginate(matched, page.Limit, page.Offset), len(matched), nil
}

func matchTransaction(t *entity.Transaction, filter repository.TransactionFilter) bool {
	switch filter.Direction {
	case repository.DirectionIncome:
		if !t.IsIncome() {
			return false
		}
	case repository.DirectionExpense:
		if !t.IsExpense() {
			return false
		}
	}
	return filter.Type == "" || t.Type == filter.Type
}
