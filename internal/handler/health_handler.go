package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/platform/response"
)

// CatalogCounter reports the catalog size.
type CatalogCounter interface {
	CountApartments(ctx context.Context) (int64, error)
}

// HealthHandler serves the application-level health check.
type HealthHandler struct {
	catalog CatalogCounter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(catalog CatalogCounter) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// RegisterRoutes registers GET /api/health.
func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/health", h.Health)
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	count, err := h.catalog.CountApartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"message":         "服务运行正常",
		"apartmentsCount": count,
	})
}
