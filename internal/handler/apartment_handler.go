package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/middleware"
	"github.com/rent-home/service-matching/internal/platform/response"
)

// ApartmentHandler serves the public catalog and the admin catalog editor.
type ApartmentHandler struct {
	service     *application.ApartmentService
	media       *application.MediaService
	suggestions *application.SuggestionService
}

// NewApartmentHandler creates a new ApartmentHandler.
func NewApartmentHandler(
	service *application.ApartmentService,
	media *application.MediaService,
	suggestions *application.SuggestionService,
) *ApartmentHandler {
	return &ApartmentHandler{service: service, media: media, suggestions: suggestions}
}

// RegisterRoutes registers public and admin catalog routes.
func (h *ApartmentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.GET("/api/apartments", h.ListApartments)

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/apartments", h.ListApartments)
		admin.POST("/apartments", h.CreateApartment)
		admin.POST("/apartments/check-name", h.CheckName)
		admin.GET("/apartments/:id", h.GetApartment)
		admin.PUT("/apartments/:id", h.UpdateApartment)
		admin.DELETE("/apartments/:id", h.DeleteApartment)
		admin.GET("/districts", h.ListDistricts)
		admin.POST("/upload", h.Upload)
		admin.GET("/suggestion", h.Suggest)
	}
}

// ListApartments handles GET /api/apartments and GET /api/admin/apartments.
func (h *ApartmentHandler) ListApartments(c *gin.Context) {
	apartments, err := h.service.ListApartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, apartments, len(apartments))
}

// GetApartment handles GET /api/admin/apartments/:id.
func (h *ApartmentHandler) GetApartment(c *gin.Context) {
	apartment, err := h.service.GetApartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, apartment)
}

// CreateApartment handles POST /api/admin/apartments.
func (h *ApartmentHandler) CreateApartment(c *gin.Context) {
	var req application.ApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	apartment, err := h.service.CreateApartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, apartment)
}

// UpdateApartment handles PUT /api/admin/apartments/:id.
func (h *ApartmentHandler) UpdateApartment(c *gin.Context) {
	var req application.ApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	apartment, err := h.service.UpdateApartment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, apartment)
}

// DeleteApartment handles DELETE /api/admin/apartments/:id.
func (h *ApartmentHandler) DeleteApartment(c *gin.Context) {
	if err := h.service.DeleteApartment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "删除成功"})
}

// CheckName handles POST /api/admin/apartments/check-name.
func (h *ApartmentHandler) CheckName(c *gin.Context) {
	var req application.CheckNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "公寓名称不能为空")
		return
	}

	duplicate, err := h.service.CheckName(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"duplicate": duplicate})
}

// ListDistricts handles GET /api/admin/districts.
func (h *ApartmentHandler) ListDistricts(c *gin.Context) {
	districts, err := h.service.ListDistricts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, districts)
}

// Upload handles POST /api/admin/upload?type=image|video with a multipart "file" field.
func (h *ApartmentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请选择要上传的文件")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer file.Close()

	result, err := h.media.Upload(c.Request.Context(), application.UploadRequest{
		Kind:        c.DefaultQuery("type", application.MediaImage),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Suggest handles GET /api/admin/suggestion.
func (h *ApartmentHandler) Suggest(c *gin.Context) {
	suggest(c, h.suggestions)
}
