// File: internal/listing/handler.go
package listing

import (
	"errors"
	"mime/multipart"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/fieldtemplate"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMultipartMemory = 50 << 20

// Handler holds dependencies for listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
	cfg     *config.Config
}

// NewHandler creates a new listing handler.
func NewHandler(service Service, logger *zap.Logger, cfg *config.Config) *Handler {
	return &Handler{service: service, logger: logger, cfg: cfg}
}

// RegisterRoutes sets up the routes for listing operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	listingGroup := router.Group("/listings")
	{
		listingGroup.GET("", h.browseListings)
		listingGroup.GET("/:id", h.getListing)

		authedGroup := listingGroup.Group("", authMW)
		{
			authedGroup.POST("", h.createListing)
			authedGroup.PUT("/:id", h.updateListing)
			authedGroup.PATCH("/:id/status", h.updateMyListingStatus)
			authedGroup.DELETE("/:id", h.deleteListing)
			authedGroup.GET("/my-listings", h.getMyListings)
		}

		adminGroup := listingGroup.Group("/admin", authMW, adminRoleMW)
		{
			adminGroup.PATCH("/:id/status", h.adminUpdateListingStatus)
		}
	}
}

func (h *Handler) listingImages(c *gin.Context) []*multipart.FileHeader {
	if c.Request.MultipartForm == nil {
		return nil
	}
	return c.Request.MultipartForm.File["images"]
}

func (h *Handler) createListing(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request format or files too large."))
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	dynamicValues := fieldtemplate.ExtractValues(c.Request.PostForm)

	listing, err := h.service.CreateListing(c.Request.Context(), userID, req, dynamicValues, h.listingImages(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Listing created.", ToListingResponse(listing, h.cfg.ImagePublicBaseURL))
}

func (h *Handler) updateListing(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID."))
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request format or files too large."))
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	dynamicValues := fieldtemplate.ExtractValues(c.Request.PostForm)
	role := common.GetUserRoleFromContext(c)

	listing, err := h.service.UpdateListing(c.Request.Context(), userID, role, listingID, req, dynamicValues, h.listingImages(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing updated.", ToListingResponse(listing, h.cfg.ImagePublicBaseURL))
}

func (h *Handler) getListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID."))
		return
	}

	// Viewer identity is optional on this route; uuid.Nil means anonymous.
	viewerID := common.GetUserIDFromContext(c)
	viewerRole := common.GetUserRoleFromContext(c)

	listing, err := h.service.GetListing(c.Request.Context(), listingID, viewerID, viewerRole)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", ToListingResponse(listing, h.cfg.ImagePublicBaseURL))
}

func (h *Handler) browseListings(c *gin.Context) {
	var query BrowseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	// Dynamic filters share the reserved-prefix convention with form
	// submissions, applied to query-string keys.
	query.Fields = fieldtemplate.ExtractValues(c.Request.URL.Query())

	listings, pagination, err := h.service.Browse(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "", h.toResponses(listings), pagination)
}

func (h *Handler) getMyListings(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var query MyListingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	listings, pagination, err := h.service.GetMyListings(c.Request.Context(), userID, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "", h.toResponses(listings), pagination)
}

func (h *Handler) updateMyListingStatus(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID."))
		return
	}

	var req UpdateMyListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	listing, err := h.service.UpdateMyListingStatus(c.Request.Context(), userID, listingID, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing status updated.", ToListingResponse(listing, h.cfg.ImagePublicBaseURL))
}

func (h *Handler) deleteListing(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID."))
		return
	}

	role := common.GetUserRoleFromContext(c)
	if err := h.service.DeleteListing(c.Request.Context(), userID, role, listingID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing deleted.", nil)
}

func (h *Handler) adminUpdateListingStatus(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID."))
		return
	}

	var req AdminUpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	listing, err := h.service.AdminUpdateStatus(c.Request.Context(), listingID, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing status updated.", ToListingResponse(listing, h.cfg.ImagePublicBaseURL))
}

func (h *Handler) toResponses(listings []Listing) []ListingResponse {
	responses := make([]ListingResponse, len(listings))
	for i := range listings {
		responses[i] = ToListingResponse(&listings[i], h.cfg.ImagePublicBaseURL)
	}
	return responses
}
