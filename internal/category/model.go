// File: internal/category/model.go
package category

import (
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
)

// Category represents the category model in the database. Categories form a
// two-level tree: a top-level category owns zero or more child categories,
// and children never have children of their own.
type Category struct {
	common.BaseModel
	Name     string     `gorm:"type:varchar(100);not null"`
	Slug     string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_slug,unique"`
	IsActive bool       `gorm:"not null;default:true"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Children []Category `gorm:"foreignKey:ParentID"`
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}

// --- DTOs ---

// CategoryResponse defines the structure for category data sent in API responses.
type CategoryResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug"`
	IsActive  bool               `json:"is_active"`
	ParentID  *uuid.UUID         `json:"parent_id,omitempty"`
	Children  []CategoryResponse `json:"children,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToCategoryResponse converts a Category model to a CategoryResponse DTO.
func ToCategoryResponse(category *Category) CategoryResponse {
	childDTOs := make([]CategoryResponse, len(category.Children))
	for i, child := range category.Children {
		childDTOs[i] = ToCategoryResponse(&child)
	}
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Slug:      category.Slug,
		IsActive:  category.IsActive,
		ParentID:  category.ParentID,
		Children:  childDTOs,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

// AdminCreateCategoryRequest for admin creating categories. The slug is
// fixed at creation time and never changes afterwards.
type AdminCreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,max=100"`
	Slug     string     `json:"slug" binding:"omitempty,max=100"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// AdminUpdateCategoryRequest mutates display name and active flag only.
type AdminUpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
}
