package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

const transactionColumns = `id, user_id, type, amount, balance_after, status, contract_id, description, created_at, completed_at`

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create вставляет запись, id выдаёт bigserial.
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, balance_after, status, contract_id, description, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		tx.UserID, tx.Type, tx.Amount, tx.BalanceAfter, tx.Status,
		tx.ContractID, tx.Description, tx.CreatedAt, tx.CompletedAt,
	).Scan(&tx.ID)
	if err != nil {
		return dbError(err, "не удалось записать транзакцию")
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	var row transactionRow
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		return nil, notFound(err, apperror.ErrTransactionNotFound, "не удалось получить транзакцию")
	}
	return row.toEntity(), nil
}

func (r *TransactionRepository) LockForUpdate(ctx context.Context, id int64) (*entity.Transaction, error) {
	var row transactionRow
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		return nil, notFound(err, apperror.ErrTransactionNotFound, "не удалось заблокировать транзакцию")
	}
	return row.toEntity(), nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx *entity.Transaction) error {
	query := `UPDATE transactions SET status = $2, completed_at = $3 WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, tx.ID, tx.Status, tx.CompletedAt)
	if err != nil {
		return dbError(err, "не удалось обновить транзакцию")
	}
	return expectRow(res, apperror.ErrTransactionNotFound)
}

func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	switch filter.Direction {
	case repository.DirectionIncome:
		where = append(where, "amount > 0")
	case repository.DirectionExpense:
		where = append(where, "amount < 0")
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, `SELECT COUNT(*) FROM transactions WHERE `+cond, args...); err != nil {
		return nil, 0, dbError(err, "не удалось посчитать транзакции")
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, cond, len(args)-1, len(args))

	var rows []transactionRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, 0, dbError(err, "не удалось получить транзакции")
	}

	result := make([]*entity.Transaction, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, total, nil
}

type transactionRow struct {
	ID           int64           `db:"id"`
	UserID       uuid.UUID       `db:"user_id"`
	Type         string          `db:"type"`
	Amount       decimal.Decimal `db:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	Status       string          `db:"status"`
	ContractID   *uuid.UUID      `db:"contract_id"`
	Description  string          `db:"description"`
	CreatedAt    time.Time       `db:"created_at"`
	CompletedAt  *time.Time      `db:"completed_at"`
}

func (t *transactionRow) toEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:           t.ID,
		UserID:       t.UserID,
		Type:         valueobject.TransactionType(t.Type),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Status:       valueobject.TransactionStatus(t.Status),
		ContractID:   t.ContractID,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
		CompletedAt:  t.CompletedAt,
	}
}
