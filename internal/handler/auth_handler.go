package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/middleware"
	"github.com/rent-home/service-matching/internal/platform/response"
)

// AuthHandler handles user and admin login.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers the auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	users := r.Group("/api/auth")
	{
		users.POST("/send-code", h.SendCode)
		users.POST("/login", h.Login)
		users.GET("/profile", middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleUser), h.Profile)
	}

	r.POST("/api/admin/auth/login", h.AdminLogin)
}

// SendCode handles POST /api/auth/send-code.
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req application.SendCodeRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.SendCode(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "验证码已发送"})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": result.Token, "user": result.User})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// AdminLogin handles POST /api/admin/auth/login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req application.AdminLoginRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.AdminLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": result.Token, "admin": result.Admin})
}
