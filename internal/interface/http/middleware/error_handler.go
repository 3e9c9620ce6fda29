package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
)

// ErrorHandler отвечает за обработчики, которые положили ошибку в c.Errors и ничего не написали.
// AppError уходит клиенту с кодом и деталями, остальное маскируется.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}
