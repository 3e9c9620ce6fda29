package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/timebank-backend/internal/interface/http/dto"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
	"github.com/ignatzorin/timebank-backend/internal/usecase/user"
)

type AuthHandler struct {
	registerUC *user.RegisterUseCase
	loginUC    *user.LoginUseCase
	getMeUC    *user.GetMeUseCase
}

func NewAuthHandler(registerUC *user.RegisterUseCase, loginUC *user.LoginUseCase, getMeUC *user.GetMeUseCase) *AuthHandler {
	return &AuthHandler{registerUC: registerUC, loginUC: loginUC, getMeUC: getMeUC}
}

// Register обрабатывает POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.registerUC.Execute(c.Request.Context(), user.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAuthResponse(res))
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.loginUC.Execute(c.Request.Context(), user.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAuthResponse(res))
}

// Me обрабатывает GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	res, err := h.getMeUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAuthResponse(res))
}
