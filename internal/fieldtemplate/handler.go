// File: internal/fieldtemplate/handler.go
package fieldtemplate

import (
	"errors"

	"marketplace_backend/internal/category"
	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler holds dependencies for field-template handlers.
type Handler struct {
	service         Service
	categoryService category.Service
	logger          *zap.Logger
}

// NewHandler creates a new field-template handler.
func NewHandler(service Service, categoryService category.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, categoryService: categoryService, logger: logger}
}

// RegisterRoutes sets up the routes for template operations. The public
// route serves the seller form and browse filters; everything else is admin.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	router.GET("/categories/:slug/templates", h.listTemplatesForCategory)

	adminGroup := router.Group("/categories/admin/:id/templates", authMW, adminRoleMW)
	{
		adminGroup.GET("", h.adminListTemplates)
		adminGroup.POST("", h.adminCreateTemplate)
		adminGroup.GET("/orphans", h.adminListOrphanedKeys)
	}

	templateAdmin := router.Group("/templates/admin", authMW, adminRoleMW)
	{
		templateAdmin.PATCH("/:id", h.adminUpdateTemplate)
		templateAdmin.DELETE("/:id", h.adminDeleteTemplate)
	}
}

func (h *Handler) listTemplatesForCategory(c *gin.Context) {
	cat, err := h.categoryService.GetCategoryBySlug(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	templates, err := h.service.ListActiveTemplates(c.Request.Context(), cat.ID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", toTemplateResponses(templates))
}

func (h *Handler) adminListTemplates(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid category ID."))
		return
	}

	templates, err := h.service.ListAllTemplates(c.Request.Context(), categoryID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", toTemplateResponses(templates))
}

func (h *Handler) adminCreateTemplate(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid category ID."))
		return
	}

	if _, err := h.categoryService.GetCategoryByID(c.Request.Context(), categoryID, false); err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req AdminCreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	template, err := h.service.CreateTemplate(c.Request.Context(), categoryID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Template created.", ToTemplateResponse(template))
}

func (h *Handler) adminUpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid template ID."))
		return
	}

	var req AdminUpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	template, err := h.service.UpdateTemplate(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Template updated.", ToTemplateResponse(template))
}

func (h *Handler) adminDeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid template ID."))
		return
	}

	if err := h.service.DeleteTemplate(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) adminListOrphanedKeys(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid category ID."))
		return
	}

	orphans, err := h.service.ListOrphanedKeys(c.Request.Context(), categoryID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", orphans)
}

func toTemplateResponses(templates []FieldTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		responses[i] = ToTemplateResponse(&t)
	}
	return responses
}
