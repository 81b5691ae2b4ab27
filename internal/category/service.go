// File: internal/category/service.go
package category

import (
	"context"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the interface for category-related business logic.
type Service interface {
	// Admin methods
	AdminCreateCategory(ctx context.Context, req AdminCreateCategoryRequest) (*Category, error)
	AdminUpdateCategory(ctx context.Context, id uuid.UUID, req AdminUpdateCategoryRequest) (*Category, error)
	AdminDeleteCategory(ctx context.Context, id uuid.UUID) error

	// Public methods
	GetCategoryByID(ctx context.Context, id uuid.UUID, preloadChildren bool) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string, preloadChildren bool) (*Category, error)
	GetCategoryTree(ctx context.Context, onlyActive bool) ([]Category, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new category service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// --- Admin Methods ---

func (s *service) AdminCreateCategory(ctx context.Context, req AdminCreateCategoryRequest) (*Category, error) {
	finalSlug := strings.TrimSpace(req.Slug)
	if finalSlug == "" {
		finalSlug = slug.Make(req.Name)
	} else {
		finalSlug = slug.Make(finalSlug)
	}

	// Subcategory depth is exactly one level: the parent must itself be a
	// top-level category.
	if req.ParentID != nil && *req.ParentID != uuid.Nil {
		parent, err := s.repo.FindByID(ctx, *req.ParentID, false)
		if err != nil {
			return nil, common.ErrBadRequest.WithDetails("Parent category not found.")
		}
		if !parent.IsTopLevel() {
			return nil, common.ErrBadRequest.WithDetails("Subcategories cannot have their own subcategories.")
		}
	}

	category := &Category{
		Name:     strings.TrimSpace(req.Name),
		Slug:     finalSlug,
		IsActive: true,
		ParentID: req.ParentID,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.Error("Failed to create category", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}
	s.logger.Info("Category created successfully", zap.String("id", category.ID.String()), zap.String("slug", category.Slug))
	return category, nil
}

// AdminUpdateCategory mutates the display name and active flag. The slug and
// parent are fixed at creation so listing references stay valid.
func (s *service) AdminUpdateCategory(ctx context.Context, id uuid.UUID, req AdminUpdateCategoryRequest) (*Category, error) {
	category, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, category); err != nil {
		s.logger.Error("Failed to update category", zap.Error(err), zap.String("id", id.String()))
		return nil, err
	}
	s.logger.Info("Category updated successfully", zap.String("id", category.ID.String()))
	return category, nil
}

// AdminDeleteCategory hard-deletes a category. It refuses while subcategories
// exist or any listing still references it; deactivating via
// AdminUpdateCategory is the way to retire a category that is in use.
func (s *service) AdminDeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return err
	}
	if len(category.Children) > 0 {
		return common.ErrConflict.WithDetails("Delete or reassign the subcategories first.")
	}

	count, err := s.repo.CountListings(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count listings for category delete", zap.Error(err), zap.String("id", id.String()))
		return common.ErrInternalServer.WithDetails("Could not verify the category is unused.")
	}
	if count > 0 {
		return common.ErrConflict.WithDetails("The category is still referenced by listings and cannot be deleted.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("id", id.String()), zap.String("slug", category.Slug))
	return nil
}

// --- Public Methods ---

func (s *service) GetCategoryByID(ctx context.Context, id uuid.UUID, preloadChildren bool) (*Category, error) {
	return s.repo.FindByID(ctx, id, preloadChildren)
}

func (s *service) GetCategoryBySlug(ctx context.Context, slugToFind string, preloadChildren bool) (*Category, error) {
	return s.repo.FindBySlug(ctx, slugToFind, preloadChildren)
}

func (s *service) GetCategoryTree(ctx context.Context, onlyActive bool) ([]Category, error) {
	categories, err := s.repo.FindTopLevel(ctx, onlyActive)
	if err != nil {
		s.logger.Error("Failed to get category tree", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve categories.")
	}
	return categories, nil
}
