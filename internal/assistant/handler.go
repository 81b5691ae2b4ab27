// File: internal/assistant/handler.go
package assistant

import (
	"errors"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handler holds dependencies for assistant handlers.
type Handler struct {
	service Service
}

// NewHandler creates a new assistant handler. A nil service disables the
// routes; the deployment simply has no API key configured.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up the routes for assistant operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	if h.service == nil {
		return
	}
	router.POST("/assistant/describe", authMW, h.describe)
}

func (h *Handler) describe(c *gin.Context) {
	var req DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	description, err := h.service.GenerateDescription(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", gin.H{"description": description})
}
