package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/timebank-backend/internal/logger"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type txKey struct{}

// Transactor открывает транзакцию sqlx и кладёт её в ctx.
// Репозитории берут соединение через conn, поэтому работают и внутри транзакции, и без неё.
type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Log.WithError(rbErr).Warn("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// conn возвращает транзакцию из ctx либо пул.
func conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

const uniqueViolation = "23505"

// uniqueConstraint возвращает имя нарушенного уникального ограничения.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func dbError(err error, message string) error {
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// notFound переводит sql.ErrNoRows в доменную ошибку.
func notFound(err error, domain *apperror.AppError, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain
	}
	return dbError(err, message)
}

// expectRow возвращает missing, если UPDATE не затронул ни одной строки.
func expectRow(res sql.Result, missing *apperror.AppError) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, "не удалось проверить результат запроса")
	}
	if n == 0 {
		return missing
	}
	return nil
}
