package user

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
	"github.com/ignatzorin/timebank-backend/internal/service"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

type TokenIssuer interface {
	Issue(user *entity.User) (*service.AccessToken, error)
}

type AuthResult struct {
	User   *entity.User
	Wallet *entity.Wallet
	Token  *service.AccessToken
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// RegisterUseCase создаёт пользователя и пустой кошелёк в одной транзакции.
type RegisterUseCase struct {
	tx      repository.Transactor
	users   repository.UserRepository
	wallets repository.WalletRepository
	tokens  TokenIssuer
}

func NewRegisterUseCase(tx repository.Transactor, users repository.UserRepository, wallets repository.WalletRepository, tokens TokenIssuer) *RegisterUseCase {
	return &RegisterUseCase{tx: tx, users: users, wallets: wallets, tokens: tokens}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if n := utf8.RuneCountInString(input.Password); n < MinPasswordLength || len(input.Password) > MaxPasswordLength {
		return nil, apperror.Validation("password", "пароль должен быть от 8 до 72 символов")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	now := time.Now()
	user, err := entity.NewUser(input.Email, input.Name, string(hash), now)
	if err != nil {
		return nil, err
	}
	wallet := entity.NewWallet(user.ID, now)

	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.users.Create(ctx, user); err != nil {
			return err
		}
		return uc.wallets.Create(ctx, wallet)
	})
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Wallet: wallet, Token: token}, nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginUseCase struct {
	users   repository.UserRepository
	wallets repository.WalletRepository
	tokens  TokenIssuer
}

func NewLoginUseCase(users repository.UserRepository, wallets repository.WalletRepository, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{users: users, wallets: wallets, tokens: tokens}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := uc.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	wallet, err := uc.wallets.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Wallet: wallet, Token: token}, nil
}

type GetMeUseCase struct {
	users   repository.UserRepository
	wallets repository.WalletRepository
}

func NewGetMeUseCase(users repository.UserRepository, wallets repository.WalletRepository) *GetMeUseCase {
	return &GetMeUseCase{users: users, wallets: wallets}
}

func (uc *GetMeUseCase) Execute(ctx context.Context, userID uuid.UUID) (*AuthResult, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallet, err := uc.wallets.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Wallet: wallet}, nil
}
