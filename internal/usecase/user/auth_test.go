package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
	"github.com/ignatzorin/timebank-backend/internal/service"
	"github.com/ignatzorin/timebank-backend/internal/usecase/user"
)

func newUseCases() (*user.RegisterUseCase, *user.LoginUseCase, *service.TokenManager) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	wallets := memory.NewWalletRepository(store)
	tokens := service.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	return user.NewRegisterUseCase(store, users, wallets, tokens), user.NewLoginUseCase(users, wallets, tokens), tokens
}

func TestRegister_CreatesEmptyWallet(t *testing.T) {
	register, _, tokens := newUseCases()

	res, err := register.Execute(context.Background(), user.RegisterInput{
		Email:    "Maria@Example.com",
		Name:     "Maria",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", res.User.Email)
	assert.True(t, res.Wallet.Available.IsZero())
	assert.True(t, res.Wallet.Escrowed.IsZero())

	id, err := tokens.ParseAccess(res.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	register, _, _ := newUseCases()
	in := user.RegisterInput{Email: "dup@example.com", Name: "Dup", Password: "password1"}

	_, err := register.Execute(context.Background(), in)
	require.NoError(t, err)
	_, err = register.Execute(context.Background(), in)
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeConflict))
}

func TestRegister_ShortPassword(t *testing.T) {
	register, _, _ := newUseCases()

	_, err := register.Execute(context.Background(), user.RegisterInput{Email: "a@b.io", Name: "A", Password: "123"})
	assert.True(t, apperror.IsValidation(err))
}

func TestLogin(t *testing.T) {
	register, login, _ := newUseCases()
	ctx := context.Background()

	_, err := register.Execute(ctx, user.RegisterInput{Email: "ivan@example.com", Name: "Ivan", Password: "s3cret-pass"})
	require.NoError(t, err)

	res, err := login.Execute(ctx, user.LoginInput{Email: " IVAN@example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token.Token)

	_, err = login.Execute(ctx, user.LoginInput{Email: "ivan@example.com", Password: "wrong-pass"})
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeUnauthorized))

	_, err = login.Execute(ctx, user.LoginInput{Email: "nobody@example.com", Password: "whatever1"})
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeUnauthorized))
}
