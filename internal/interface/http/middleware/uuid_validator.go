package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Использование: router.GET("/tasks/:id", UUIDValidator("id"), handler.GetTask)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			response.BadRequest(c, "параметр "+paramName+" должен быть валидным UUID")
			return
		}
		c.Next()
	}
}
