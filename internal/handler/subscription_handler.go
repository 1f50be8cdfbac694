package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/middleware"
	"github.com/rent-home/service-matching/internal/platform/response"
)

// SubscriptionHandler handles subscription orders.
type SubscriptionHandler struct {
	service *application.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(service *application.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// RegisterRoutes registers the subscription routes. Every route requires a user token.
func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	subs := r.Group("/api/subscription")
	subs.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleUser))
	{
		subs.POST("/create", h.CreateOrder)
		subs.POST("/mark-paid", h.MarkPaid)
		subs.GET("/my", h.MySubscription)
	}
}

// CreateOrder handles POST /api/subscription/create.
func (h *SubscriptionHandler) CreateOrder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreateOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.service.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// MarkPaid handles POST /api/subscription/mark-paid.
func (h *SubscriptionHandler) MarkPaid(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.MarkPaidRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.MarkPaid(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Order, "message": result.Message})
}

// MySubscription handles GET /api/subscription/my.
func (h *SubscriptionHandler) MySubscription(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.service.MySubscription(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
