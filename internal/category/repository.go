// File: internal/category/repository.go
package category

import (
	"context"
	"errors"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for category data operations.
type Repository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id uuid.UUID, preloadChildren bool) (*Category, error)
	FindBySlug(ctx context.Context, slug string, preloadChildren bool) (*Category, error)
	FindTopLevel(ctx context.Context, onlyActive bool) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountListings(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM category repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, category *Category) error {
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	err := r.db.WithContext(ctx).Create(category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A category with this slug already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preloadChildren bool) (*Category, error) {
	var category Category
	query := r.db.WithContext(ctx)
	if preloadChildren {
		query = query.Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.name ASC")
		})
	}
	err := query.First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string, preloadChildren bool) (*Category, error) {
	var category Category
	normalizedSlug := strings.ToLower(strings.TrimSpace(slug))
	query := r.db.WithContext(ctx)
	if preloadChildren {
		query = query.Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.name ASC")
		})
	}
	err := query.First(&category, "slug = ?", normalizedSlug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormRepository) FindTopLevel(ctx context.Context, onlyActive bool) ([]Category, error) {
	var categories []Category
	query := r.db.WithContext(ctx).Where("parent_id IS NULL")
	if onlyActive {
		query = query.Where("is_active = ?", true)
		query = query.Preload("Children", "is_active = ?", true)
	} else {
		query = query.Preload("Children")
	}
	err := query.Order("categories.name ASC").Find(&categories).Error
	return categories, err
}

func (r *gormRepository) Update(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Save(category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A category with this slug already exists.")
		}
		return err
	}
	return nil
}

// Delete removes the category and its field-template definitions in one
// transaction. Callers must have verified no listings reference it.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM field_templates WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil
	})
}

// CountListings reports how many listings still reference the category.
// Categories are never hard-deleted while this is non-zero.
func (r *gormRepository) CountListings(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("listings").Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
