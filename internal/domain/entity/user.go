package entity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(email, name, passwordHash string, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("email", "некорректный email")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name", "имя обязательно")
	}
	if passwordHash == "" {
		return nil, apperror.Validation("password", "пароль обязателен")
	}

	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
