package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	query := `INSERT INTO wallets (user_id, available, escrowed, updated_at) VALUES ($1, $2, $3, $4)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, wallet.UserID, wallet.Available, wallet.Escrowed, wallet.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось создать кошелёк")
	}
	return nil
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	var row walletRow
	query := `SELECT user_id, available, escrowed, updated_at FROM wallets WHERE user_id = $1`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, userID); err != nil {
		return nil, notFound(err, apperror.ErrWalletNotFound, "не удалось получить кошелёк")
	}
	return row.toEntity(), nil
}

// LockForUpdate берёт блокировки по одной в порядке возрастания user_id,
// чтобы встречные переводы не взаимоблокировались.
func (r *WalletRepository) LockForUpdate(ctx context.Context, userIDs ...uuid.UUID) (map[uuid.UUID]*entity.Wallet, error) {
	ids := append([]uuid.UUID(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	query := `SELECT user_id, available, escrowed, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE`
	locked := make(map[uuid.UUID]*entity.Wallet, len(ids))
	for _, id := range ids {
		if _, ok := locked[id]; ok {
			continue
		}
		var row walletRow
		if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
			return nil, notFound(err, apperror.ErrWalletNotFound, "не удалось заблокировать кошелёк")
		}
		locked[id] = row.toEntity()
	}
	return locked, nil
}

func (r *WalletRepository) Update(ctx context.Context, wallet *entity.Wallet) error {
	query := `UPDATE wallets SET available = $2, escrowed = $3, updated_at = $4 WHERE user_id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, wallet.UserID, wallet.Available, wallet.Escrowed, wallet.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось обновить кошелёк")
	}
	return expectRow(res, apperror.ErrWalletNotFound)
}

type walletRow struct {
	UserID    uuid.UUID       `db:"user_id"`
	Available decimal.Decimal `db:"available"`
	Escrowed  decimal.Decimal `db:"escrowed"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (w *walletRow) toEntity() *entity.Wallet {
	return &entity.Wallet{
		UserID:    w.UserID,
		Available: w.Available,
		Escrowed:  w.Escrowed,
		UpdatedAt: w.UpdatedAt,
	}
}
