package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Nabhonil04/stockpredict/internal/database/service"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Request/Response DTOs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginForm is the form-encoded login body; username carries the email.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// LoginRequest is the JSON login body sent by browser clients.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid registration request", "error", err)
		bindingError(c, err)
		return
	}

	_, token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

// Login handles POST /auth/login with either a form or a JSON body
func (h *AuthHandler) Login(c *gin.Context) {
	var email, password string

	if c.ContentType() == binding.MIMEJSON {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("⚠️ [Handler] Invalid login request", "error", err)
			bindingError(c, err)
			return
		}
		email, password = req.Email, req.Password
	} else {
		var form LoginForm
		if err := c.ShouldBindWith(&form, binding.Form); err != nil {
			h.logger.Warn("⚠️ [Handler] Invalid login request", "error", err)
			bindingError(c, err)
			return
		}
		email, password = form.Username, form.Password
	}

	_, token, err := h.service.Login(c.Request.Context(), email, password)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}
