package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/service"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes registers auth routes. authLimiter guards the credential
// endpoints against brute force.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, authLimiter gin.HandlerFunc) {
	r.POST("/register", authLimiter, h.Register)
	r.POST("/login", authLimiter, h.Login)
	r.GET("/me", AuthMiddleware(h.auth), h.GetMe)
}

// Register creates an account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidationError, "请求参数验证失败"))
		return
	}

	result, err := h.auth.Register(req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, models.Failure(models.CodeConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	c.JSON(http.StatusCreated, models.Success(result))
}

// Login authenticates a user
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidationError, "请求参数验证失败"))
		return
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, models.Failure("INVALID_CREDENTIALS", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	c.JSON(http.StatusOK, models.Success(result))
}

// GetMe returns the authenticated user's profile
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.auth.GetMe(UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	c.JSON(http.StatusOK, models.Success(user))
}
