package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/middleware"
	"github.com/rent-home/service-matching/internal/platform/response"
)

// MatchHandler handles apartment matching requests.
type MatchHandler struct {
	service       *application.MatchService
	subscriptions SubscriptionChecker
}

// NewMatchHandler creates a new MatchHandler. A nil checker leaves /api/match open to anonymous callers.
func NewMatchHandler(service *application.MatchService, subscriptions SubscriptionChecker) *MatchHandler {
	return &MatchHandler{service: service, subscriptions: subscriptions}
}

// RegisterRoutes registers the match route on the given router group.
func (h *MatchHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	if h.subscriptions == nil {
		r.POST("/api/match", h.Match)
		return
	}
	r.POST("/api/match", middleware.AuthMiddleware(jwtManager), RequireSubscription(h.subscriptions), h.Match)
}

// Match handles POST /api/match.
func (h *MatchHandler) Match(c *gin.Context) {
	var req application.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, application.MissingParamsError())
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.service.Match(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         result.Data,
		"total":        result.Total,
		"workLocation": result.WorkLocation,
	})
}
