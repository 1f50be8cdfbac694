package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/platform/middleware"
	"github.com/rent-home/service-matching/internal/platform/response"
)

// SubscriptionChecker reports whether a user may use paid features.
type SubscriptionChecker interface {
	RequireActive(ctx context.Context, userID string) error
}

// RequireSubscription rejects callers without an active subscription. Must run after AuthMiddleware.
func RequireSubscription(checker SubscriptionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    "UNAUTHORIZED",
				"message": "请先登录",
			})
			return
		}

		if err := checker.RequireActive(c.Request.Context(), userID); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
