package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	user := &entity.User{ID: uuid.New()}

	token, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	id, err := m.ParseAccess(token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one-secret-one-secret-one-1", time.Hour)
	parser := NewTokenManager("secret-two-secret-two-secret-two-2", time.Hour)

	token, err := issuer.Issue(&entity.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = parser.ParseAccess(token.Token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(&entity.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = m.ParseAccess(token.Token)
	assert.Error(t, err)
}
