package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/usecase/user"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User        UserResponse    `json:"user"`
	Wallet      *WalletResponse `json:"wallet,omitempty"`
	AccessToken string          `json:"accessToken,omitempty"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func ToAuthResponse(res *user.AuthResult) AuthResponse {
	out := AuthResponse{User: ToUserResponse(res.User)}
	if res.Wallet != nil {
		w := ToWalletResponse(res.Wallet)
		out.Wallet = &w
	}
	if res.Token != nil {
		out.AccessToken = res.Token.Token
		exp := res.Token.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}
