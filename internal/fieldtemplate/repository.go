// File: internal/fieldtemplate/repository.go
package fieldtemplate

import (
	"context"
	"errors"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for field template data operations.
type Repository interface {
	Create(ctx context.Context, template *FieldTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*FieldTemplate, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID, onlyActive bool) ([]FieldTemplate, error)
	Update(ctx context.Context, template *FieldTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOrphanedKeys(ctx context.Context, categoryID uuid.UUID) ([]OrphanedKey, error)
}

// OrphanedKey is a field-value key stored on listings of a category that no
// longer matches any template definition, with how many listings carry it.
type OrphanedKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM field template repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, template *FieldTemplate) error {
	err := r.db.WithContext(ctx).Create(template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A template with this key already exists in the category.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*FieldTemplate, error) {
	var template FieldTemplate
	err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Field template not found.")
		}
		return nil, err
	}
	return &template, nil
}

// FindByCategory returns the category's templates ordered ascending by sort
// order. With onlyActive set, deactivated templates are excluded so sellers
// are never asked to fill fields an admin has hidden.
func (r *gormRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, onlyActive bool) ([]FieldTemplate, error) {
	var templates []FieldTemplate
	query := r.db.WithContext(ctx).Where("category_id = ?", categoryID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC").Find(&templates).Error
	return templates, err
}

func (r *gormRepository) Update(ctx context.Context, template *FieldTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// Delete removes the definition only. Field values already stored on
// listings are deliberately left in place (documented orphan policy).
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&FieldTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Field template not found or already deleted.")
	}
	return nil
}

// FindOrphanedKeys reports field-value keys stored on the category's
// listings that no current template of the category defines.
func (r *gormRepository) FindOrphanedKeys(ctx context.Context, categoryID uuid.UUID) ([]OrphanedKey, error) {
	var orphans []OrphanedKey
	err := r.db.WithContext(ctx).
		Table("listing_field_values").
		Select("listing_field_values.key AS key, COUNT(DISTINCT listing_field_values.listing_id) AS count").
		Joins("JOIN listings ON listings.id = listing_field_values.listing_id").
		Where("listings.category_id = ?", categoryID).
		Where("listing_field_values.key NOT IN (?)",
			r.db.Table("field_templates").Select("key").Where("category_id = ?", categoryID)).
		Group("listing_field_values.key").
		Order("listing_field_values.key ASC").
		Scan(&orphans).Error
	return orphans, err
}
