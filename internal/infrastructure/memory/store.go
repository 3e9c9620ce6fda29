// Package memory - хранилище в памяти с транзакциями: блокировки по ключу держатся до конца
// единицы работы, изменения применяются только при успешном завершении.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
)

type Store struct {
	mu sync.RWMutex

	users     map[uuid.UUID]*entity.User
	emails    map[string]uuid.UUID
	wallets   map[uuid.UUID]*entity.Wallet
	txs       map[int64]*entity.Transaction
	nextTxID  int64
	tasks     map[uuid.UUID]*entity.Task
	proposals map[uuid.UUID]*entity.Proposal
	contracts map[uuid.UUID]*entity.Contract

	locks *keyLocks
}

func NewStore() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*entity.User),
		emails:    make(map[string]uuid.UUID),
		wallets:   make(map[uuid.UUID]*entity.Wallet),
		txs:       make(map[int64]*entity.Transaction),
		tasks:     make(map[uuid.UUID]*entity.Task),
		proposals: make(map[uuid.UUID]*entity.Proposal),
		contracts: make(map[uuid.UUID]*entity.Contract),
		locks:     newKeyLocks(),
	}
}

type unitKey struct{}

// unit - одна единица работы: удерживаемые блокировки и отложенные записи.
type unit struct {
	held   map[string]struct{}
	order  []string
	staged map[string]any
}

func newUnit() *unit {
	return &unit{
		held:   make(map[string]struct{}),
		staged: make(map[string]any),
	}
}

func unitFrom(ctx context.Context) *unit {
	u, _ := ctx.Value(unitKey{}).(*unit)
	return u
}

// WithinTransaction выполняет fn в единице работы. Вложенный вызов использует внешнюю.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if unitFrom(ctx) != nil {
		return fn(ctx)
	}

	u := newUnit()
	defer s.releaseAll(u)

	if err := fn(context.WithValue(ctx, unitKey{}, u)); err != nil {
		return err
	}
	s.commit(u)
	return nil
}

func (s *Store) releaseAll(u *unit) {
	for key := range u.held {
		s.locks.release(key)
	}
}

func (s *Store) commit(u *unit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range u.order {
		switch v := u.staged[key].(type) {
		case *entity.User:
			s.users[v.ID] = v
			s.emails[v.Email] = v.ID
		case *entity.Wallet:
			s.wallets[v.UserID] = v
		case *entity.Transaction:
			s.txs[v.ID] = v
		case *entity.Task:
			s.tasks[v.ID] = v
		case *entity.Proposal:
			s.proposals[v.ID] = v
		case *entity.Contract:
			s.contracts[v.ID] = v
		}
	}
}

// lock берёт блокировку ключа на время единицы работы. Вне транзакции ничего не делает.
func (s *Store) lock(ctx context.Context, key string) error {
	u := unitFrom(ctx)
	if u == nil {
		return nil
	}
	if _, ok := u.held[key]; ok {
		return nil
	}
	if err := s.locks.acquire(ctx, key); err != nil {
		return err
	}
	u.held[key] = struct{}{}
	return nil
}

// stage откладывает запись до фиксации. Вне транзакции запись применяется сразу.
func (s *Store) stage(ctx context.Context, key string, v any) {
	u := unitFrom(ctx)
	if u == nil {
		one := newUnit()
		one.order = []string{key}
		one.staged[key] = v
		s.commit(one)
		return
	}
	if _, ok := u.staged[key]; !ok {
		u.order = append(u.order, key)
	}
	u.staged[key] = v
}

func staged[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	u := unitFrom(ctx)
	if u == nil {
		return zero, false
	}
	v, ok := u.staged[key].(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// stagedAll возвращает все отложенные записи заданного типа.
func stagedAll[T any](ctx context.Context) []T {
	u := unitFrom(ctx)
	if u == nil {
		return nil
	}
	var out []T
	for _, key := range u.order {
		if v, ok := u.staged[key].(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func userKey(id uuid.UUID) string { return "user:" + id.String() }
func emailKey(email string) string { return "email:" + email }
func walletKey(id uuid.UUID) string { return "wallet:" + id.String() }
func txKey(id int64) string { return fmt.Sprintf("tx:%d", id) }
func taskKey(id uuid.UUID) string { return "task:" + id.String() }
func proposalKey(id uuid.UUID) string { return "proposal:" + id.String() }
func contractKey(id uuid.UUID) string { return "contract:" + id.String() }

func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := append([]uuid.UUID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// keyLocks - эксклюзивные блокировки по строковому ключу с поддержкой отмены через ctx.
type keyLocks struct {
	mu    sync.Mutex
	chans map[string]chan struct{}
}

func newKeyLocks() *keyLocks {
	return &keyLocks{chans: make(map[string]chan struct{})}
}

func (l *keyLocks) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.chans[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.chans[key] = ch
	}
	return ch
}

func (l *keyLocks) acquire(ctx context.Context, key string) error {
	select {
	case l.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *keyLocks) release(key string) {
	<-l.slot(key)
}
