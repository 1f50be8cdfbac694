package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/platform/response"
)

// SuggestionHandler serves address autocomplete for the app.
type SuggestionHandler struct {
	service *application.SuggestionService
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(service *application.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// RegisterRoutes registers GET /api/suggestion.
func (h *SuggestionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/suggestion", h.Suggest)
}

// Suggest handles GET /api/suggestion?keyword=&region=.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	suggest(c, h.service)
}

func suggest(c *gin.Context, service *application.SuggestionService) {
	results, err := service.Suggest(c.Request.Context(), c.Query("keyword"), c.Query("region"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, results)
}
