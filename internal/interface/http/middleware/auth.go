package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
)

// ContextUserIDKey - ключ gin.Context с id текущего пользователя.
const ContextUserIDKey = "userID"

// TokenParser извлекает id пользователя из access токена.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUser(c, tokens)
		if !ok {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth кладёт пользователя в контекст, если токен есть и валиден, и никого не отклоняет.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := bearerUser(c, tokens); ok {
			c.Set(ContextUserIDKey, userID)
		}
		c.Next()
	}
}

func bearerUser(c *gin.Context, tokens TokenParser) (uuid.UUID, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return uuid.Nil, false
	}
	userID, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// UserID возвращает пользователя, положенного AuthMiddleware или OptionalAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
