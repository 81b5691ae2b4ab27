// File: internal/listing/service.go
package listing

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"marketplace_backend/internal/billing"
	"marketplace_backend/internal/category"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/fieldtemplate"
	"marketplace_backend/internal/filestorage"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/platform/breaker"
	"marketplace_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxImagesPerListing = 10
	imageSubDir         = "listings"
)

// Service defines the interface for listing business logic.
type Service interface {
	CreateListing(ctx context.Context, userID uuid.UUID, req CreateListingRequest, dynamicValues map[string]string, images []*multipart.FileHeader) (*Listing, error)
	UpdateListing(ctx context.Context, userID uuid.UUID, role string, listingID uuid.UUID, req UpdateListingRequest, dynamicValues map[string]string, images []*multipart.FileHeader) (*Listing, error)
	GetListing(ctx context.Context, id uuid.UUID, viewerID uuid.UUID, viewerRole string) (*Listing, error)
	Browse(ctx context.Context, query BrowseQuery) ([]Listing, *common.Pagination, error)
	GetMyListings(ctx context.Context, userID uuid.UUID, query MyListingsQuery) ([]Listing, *common.Pagination, error)
	UpdateMyListingStatus(ctx context.Context, userID uuid.UUID, listingID uuid.UUID, status Status) (*Listing, error)
	DeleteListing(ctx context.Context, userID uuid.UUID, role string, listingID uuid.UUID) error
	AdminUpdateStatus(ctx context.Context, listingID uuid.UUID, status Status) (*Listing, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo            Repository
	templateService fieldtemplate.Service
	categoryService category.Service
	billingService  billing.Service
	userService     user.Service
	notifier        notification.Service
	storage         *filestorage.Service
	writeBreaker    breaker.Breaker
	cfg             *config.Config
	logger          *zap.Logger
}

// NewService creates a new listing service.
func NewService(
	repo Repository,
	templateService fieldtemplate.Service,
	categoryService category.Service,
	billingService billing.Service,
	userService user.Service,
	notifier notification.Service,
	storage *filestorage.Service,
	writeBreaker breaker.Breaker,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		repo:            repo,
		templateService: templateService,
		categoryService: categoryService,
		billingService:  billingService,
		userService:     userService,
		notifier:        notifier,
		storage:         storage,
		writeBreaker:    writeBreaker,
		cfg:             cfg,
		logger:          logger,
	}
}

// templateScopeID picks which category's templates govern a listing: the
// subcategory when one is selected, the top-level category otherwise.
func templateScopeID(categoryID uuid.UUID, subCategoryID *uuid.UUID) uuid.UUID {
	if subCategoryID != nil && *subCategoryID != uuid.Nil {
		return *subCategoryID
	}
	return categoryID
}

// resolveCategories loads and checks the category pair of a submission: the
// category must be top-level and the optional subcategory must be its child.
func (s *service) resolveCategories(ctx context.Context, categoryID uuid.UUID, subCategoryID *uuid.UUID) error {
	cat, err := s.categoryService.GetCategoryByID(ctx, categoryID, false)
	if err != nil {
		return err
	}
	if !cat.IsTopLevel() {
		return common.NewValidationAPIError([]string{"Listings must reference a top-level category."})
	}
	if subCategoryID != nil && *subCategoryID != uuid.Nil {
		sub, err := s.categoryService.GetCategoryByID(ctx, *subCategoryID, false)
		if err != nil {
			return err
		}
		if sub.ParentID == nil || *sub.ParentID != categoryID {
			return common.NewValidationAPIError([]string{"The subcategory does not belong to the selected category."})
		}
	}
	return nil
}

// guardedSave wraps the repository write with the circuit breaker. Storage
// failures open the breaker and surface as a temporary-failure error; domain
// errors pass through untouched.
func (s *service) guardedSave(ctx context.Context, listing *Listing, dynamicValues map[string]string) error {
	if s.writeBreaker.IsOpen() {
		return common.ErrServiceUnavailable
	}
	if err := s.repo.Save(ctx, listing, dynamicValues); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.writeBreaker.RecordFailure()
		s.logger.Error("Listing write failed", zap.Error(err), zap.String("listingID", listing.ID.String()))
		return common.ErrServiceUnavailable
	}
	s.writeBreaker.RecordSuccess()
	return nil
}

func (s *service) CreateListing(ctx context.Context, userID uuid.UUID, req CreateListingRequest, dynamicValues map[string]string, images []*multipart.FileHeader) (*Listing, error) {
	if len(images) > maxImagesPerListing {
		return nil, common.NewValidationAPIError([]string{fmt.Sprintf("A listing can have at most %d images.", maxImagesPerListing)})
	}
	if err := s.resolveCategories(ctx, req.CategoryID, req.SubCategoryID); err != nil {
		return nil, err
	}

	priceCents := int64(0)
	if strings.TrimSpace(req.Price) != "" {
		cents, ok := ParsePriceCents(req.Price)
		if !ok {
			return nil, common.NewValidationAPIError([]string{"Price must be a valid amount."})
		}
		priceCents = cents
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	condition := req.Condition
	if condition == "" {
		condition = ConditionUsed
	}

	listing := &Listing{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		CityID:        req.CityID,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		PriceCents:    priceCents,
		Currency:      currency,
		Condition:     condition,
		Status:        StatusDraft,
	}

	if req.Intent == IntentPublish {
		if err := s.preparePublish(ctx, listing, dynamicValues); err != nil {
			return nil, err
		}
	}

	if err := s.guardedSave(ctx, listing, dynamicValues); err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, listing, images); err != nil {
		// The listing itself is saved; image storage problems should not
		// destroy the submission.
		s.logger.Error("Failed to store listing images", zap.Error(err), zap.String("listingID", listing.ID.String()))
	}

	if listing.Status == StatusActive {
		s.notifier.Notify(ctx, userID, notification.TypeListingPublished,
			fmt.Sprintf("Your listing %q is now live.", listing.Title), &listing.ID)
	}

	s.logger.Info("Listing created",
		zap.String("id", listing.ID.String()),
		zap.String("status", string(listing.Status)),
		zap.String("userID", userID.String()))
	return s.repo.FindByID(ctx, listing.ID, true)
}

func (s *service) UpdateListing(ctx context.Context, userID uuid.UUID, role string, listingID uuid.UUID, req UpdateListingRequest, dynamicValues map[string]string, images []*multipart.FileHeader) (*Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID, true)
	if err != nil {
		return nil, err
	}
	// Existence-hiding: another user's listing looks exactly like a missing one.
	if listing.UserID != userID && role != common.RoleAdmin {
		return nil, common.ErrNotFound.WithDetails("Listing not found.")
	}
	if listing.Status == StatusRemoved {
		return nil, common.ErrForbidden.WithDetails("Removed listings cannot be edited.")
	}

	if req.CategoryID != nil {
		listing.CategoryID = *req.CategoryID
		listing.SubCategoryID = req.SubCategoryID
	} else if req.SubCategoryID != nil {
		listing.SubCategoryID = req.SubCategoryID
	}
	if err := s.resolveCategories(ctx, listing.CategoryID, listing.SubCategoryID); err != nil {
		return nil, err
	}
	if req.CityID != nil {
		listing.CityID = *req.CityID
	}
	if req.Title != nil {
		listing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		listing.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		cents, ok := ParsePriceCents(*req.Price)
		if !ok {
			return nil, common.NewValidationAPIError([]string{"Price must be a valid amount."})
		}
		listing.PriceCents = cents
	}
	if req.Currency != nil {
		listing.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Condition != nil {
		listing.Condition = *req.Condition
	}

	wasActive := listing.Status == StatusActive
	if req.Intent == IntentPublish {
		if err := s.preparePublishForUpdate(ctx, listing, dynamicValues, wasActive); err != nil {
			return nil, err
		}
	} else {
		// A plain save always lands in DRAFT, whatever the previous state.
		listing.Status = StatusDraft
	}

	if err := s.guardedSave(ctx, listing, dynamicValues); err != nil {
		return nil, err
	}

	if len(req.RemoveImageIDs) > 0 {
		removed, err := s.repo.RemoveImages(ctx, listing.ID, req.RemoveImageIDs)
		if err != nil {
			s.logger.Error("Failed to remove listing images", zap.Error(err), zap.String("listingID", listing.ID.String()))
		}
		for _, img := range removed {
			if err := s.storage.Delete(img.ImagePath); err != nil {
				s.logger.Warn("Failed to delete stored image file", zap.Error(err), zap.String("path", img.ImagePath))
			}
		}
	}
	if err := s.attachImages(ctx, listing, images); err != nil {
		s.logger.Error("Failed to store listing images", zap.Error(err), zap.String("listingID", listing.ID.String()))
	}

	if listing.Status == StatusActive && !wasActive {
		s.notifier.Notify(ctx, listing.UserID, notification.TypeListingPublished,
			fmt.Sprintf("Your listing %q is now live.", listing.Title), &listing.ID)
	}

	return s.repo.FindByID(ctx, listing.ID, true)
}

// preparePublish validates a publish attempt and, when valid, flips the
// listing to ACTIVE with a plan-dependent expiry. On failure the listing is
// left untouched so nothing gets written.
func (s *service) preparePublish(ctx context.Context, listing *Listing, dynamicValues map[string]string) error {
	templates, err := s.templateService.ListActiveTemplates(ctx, templateScopeID(listing.CategoryID, listing.SubCategoryID))
	if err != nil {
		return err
	}
	if ok, messages := ValidatePublish(listing.Title, listing.PriceCents, templates, dynamicValues); !ok {
		return common.NewPublishValidationError(messages)
	}

	seller, err := s.userService.GetUserByID(ctx, listing.UserID)
	if err != nil {
		return err
	}
	listing.Status = StatusActive
	listing.ActiveUntil = s.billingService.ResolveActiveUntil(seller, time.Now().UTC())
	return nil
}

// preparePublishForUpdate keeps the existing expiry when an already-active
// listing is republished, and starts a fresh one otherwise.
func (s *service) preparePublishForUpdate(ctx context.Context, listing *Listing, dynamicValues map[string]string, wasActive bool) error {
	previousUntil := listing.ActiveUntil
	if err := s.preparePublish(ctx, listing, dynamicValues); err != nil {
		return err
	}
	if wasActive {
		listing.ActiveUntil = previousUntil
	}
	return nil
}

func (s *service) attachImages(ctx context.Context, listing *Listing, images []*multipart.FileHeader) error {
	if len(images) == 0 {
		return nil
	}
	rows := make([]ListingImage, 0, len(images))
	for i, fileHeader := range images {
		path, err := s.storage.Save(fileHeader, imageSubDir)
		if err != nil {
			return fmt.Errorf("failed to store image %q: %w", fileHeader.Filename, err)
		}
		rows = append(rows, ListingImage{ListingID: listing.ID, ImagePath: path, SortOrder: i})
	}
	return s.repo.AddImages(ctx, rows)
}

func (s *service) GetListing(ctx context.Context, id uuid.UUID, viewerID uuid.UUID, viewerRole string) (*Listing, error) {
	listing, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if listing.Status != StatusActive && listing.UserID != viewerID && viewerRole != common.RoleAdmin {
		return nil, common.ErrNotFound.WithDetails("Listing not found.")
	}
	return listing, nil
}

func (s *service) Browse(ctx context.Context, query BrowseQuery) ([]Listing, *common.Pagination, error) {
	var categoryID, subCategoryID *uuid.UUID
	if slug := strings.TrimSpace(query.CategorySlug); slug != "" {
		cat, err := s.categoryService.GetCategoryBySlug(ctx, slug, false)
		if err != nil {
			return nil, nil, err
		}
		categoryID = &cat.ID
	}
	if slug := strings.TrimSpace(query.SubCategorySlug); slug != "" {
		sub, err := s.categoryService.GetCategoryBySlug(ctx, slug, false)
		if err != nil {
			return nil, nil, err
		}
		subCategoryID = &sub.ID
	}

	var templatesInScope []fieldtemplate.FieldTemplate
	if scope := scopeIDFromSelection(categoryID, subCategoryID); scope != nil {
		templates, err := s.templateService.ListActiveTemplates(ctx, *scope)
		if err != nil {
			return nil, nil, err
		}
		templatesInScope = templates
	}

	filter := BuildSearchFilter(query, categoryID, subCategoryID, templatesInScope)
	return s.repo.Search(ctx, filter)
}

func scopeIDFromSelection(categoryID, subCategoryID *uuid.UUID) *uuid.UUID {
	if subCategoryID != nil {
		return subCategoryID
	}
	return categoryID
}

func (s *service) GetMyListings(ctx context.Context, userID uuid.UUID, query MyListingsQuery) ([]Listing, *common.Pagination, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *service) UpdateMyListingStatus(ctx context.Context, userID uuid.UUID, listingID uuid.UUID, status Status) (*Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID, true)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, common.ErrNotFound.WithDetails("Listing not found.")
	}
	if listing.Status == StatusRemoved {
		return nil, common.ErrForbidden.WithDetails("Removed listings cannot change status.")
	}

	switch status {
	case StatusActive:
		if err := s.preparePublishForUpdate(ctx, listing, listing.FieldValueMap(), listing.Status == StatusActive); err != nil {
			return nil, err
		}
		if err := s.guardedSave(ctx, listing, listing.FieldValueMap()); err != nil {
			return nil, err
		}
	case StatusInactive:
		if err := s.repo.UpdateStatus(ctx, listingID, StatusInactive); err != nil {
			return nil, err
		}
	default:
		return nil, common.NewValidationAPIError([]string{"Status must be ACTIVE or INACTIVE."})
	}

	return s.repo.FindByID(ctx, listingID, true)
}

// DeleteListing removes a listing entirely. Stored image files are cleaned up
// best-effort after the database rows are gone.
func (s *service) DeleteListing(ctx context.Context, userID uuid.UUID, role string, listingID uuid.UUID) error {
	listing, err := s.repo.FindByID(ctx, listingID, true)
	if err != nil {
		return err
	}
	if listing.UserID != userID && role != common.RoleAdmin {
		return common.ErrNotFound.WithDetails("Listing not found.")
	}

	if err := s.repo.Delete(ctx, listingID); err != nil {
		return err
	}
	for _, img := range listing.Images {
		if err := s.storage.Delete(img.ImagePath); err != nil {
			s.logger.Warn("Failed to delete stored image file", zap.Error(err), zap.String("path", img.ImagePath))
		}
	}
	s.logger.Info("Listing deleted",
		zap.String("listingID", listingID.String()),
		zap.String("userID", userID.String()))
	return nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, listingID uuid.UUID, status Status) (*Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, listingID, status); err != nil {
		return nil, err
	}

	if status == StatusRemoved {
		s.notifier.Notify(ctx, listing.UserID, notification.TypeListingRemoved,
			fmt.Sprintf("Your listing %q was removed by a moderator.", listing.Title), &listing.ID)
	}
	s.logger.Info("Listing status changed by admin",
		zap.String("listingID", listingID.String()),
		zap.String("status", string(status)))

	return s.repo.FindByID(ctx, listingID, true)
}

// DeactivateExpired is the expiry sweep: ACTIVE listings past their
// active-until become INACTIVE and their sellers are notified.
func (s *service) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, listing := range expired {
		s.notifier.Notify(ctx, listing.UserID, notification.TypeListingExpired,
			fmt.Sprintf("Your listing %q has expired and is no longer visible.", listing.Title), &listing.ID)
	}
	return len(expired), nil
}
