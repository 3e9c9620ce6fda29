package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/middleware"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
)

// currentUser достаёт id пользователя, положенный AuthMiddleware. При отсутствии отвечает 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID разбирает UUID из параметра пути. При ошибке отвечает 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "некорректный идентификатор "+name)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return false
	}
	return true
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func parsePage(c *gin.Context) repository.Page {
	return repository.Page{
		Limit:  parseIntQuery(c, "limit", repository.DefaultPageSize),
		Offset: parseIntQuery(c, "offset", 0),
	}.Normalize()
}
