package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if _, dup := uniqueConstraint(err); dup {
		return apperror.ErrEmailTaken
	}
	if err != nil {
		return dbError(err, "не удалось создать пользователя")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var row userRow
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE id = $1`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE email = $1`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, email); err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
