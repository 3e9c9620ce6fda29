package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type WalletRepository interface {
	Create(ctx context.Context, wallet *entity.Wallet) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	// LockForUpdate блокирует кошельки в порядке возрастания id пользователя.
	LockForUpdate(ctx context.Context, userIDs ...uuid.UUID) (map[uuid.UUID]*entity.Wallet, error)
	Update(ctx context.Context, wallet *entity.Wallet) error
}

// TransactionRepository - журнал операций. Записи только добавляются, меняется лишь статус.
type TransactionRepository interface {
	// Create присваивает записи очередной id.
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id int64) (*entity.Transaction, error)
	LockForUpdate(ctx context.Context, id int64) (*entity.Transaction, error)
	UpdateStatus(ctx context.Context, tx *entity.Transaction) error
	// List возвращает записи пользователя от новых к старым.
	List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]*entity.Transaction, int, error)
}

type Direction string

const (
	DirectionAny     Direction = ""
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

type TransactionFilter struct {
	Direction Direction
	Type      valueobject.TransactionType
	Page
}
