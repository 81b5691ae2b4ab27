// File: internal/fieldtemplate/model.go

// Package fieldtemplate implements the per-category attribute schema: admins
// define typed field templates for a category, listings fill them in as
// string key-value pairs, and the same definitions drive publish validation
// and the browse filters.
package fieldtemplate

import (
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
)

// FieldType is the interpretation applied to a template's values at
// validation and display time. Values are always stored as strings.
type FieldType string

const (
	TypeText    FieldType = "TEXT"
	TypeNumber  FieldType = "NUMBER"
	TypeSelect  FieldType = "SELECT"
	TypeBoolean FieldType = "BOOLEAN"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeSelect, TypeBoolean:
		return true
	}
	return false
}

// FieldTemplate represents one field definition of a category's schema.
// Key and Type are immutable after creation: stored field values are keyed
// by Key and interpreted by Type, so changing either would silently orphan
// or reinterpret existing listing data.
type FieldTemplate struct {
	common.BaseModel
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_field_templates_category_key,unique"`
	Key        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_field_templates_category_key,unique"`
	Label      string    `gorm:"type:varchar(150);not null"`
	Type       FieldType `gorm:"type:varchar(20);not null"`
	Required   bool      `gorm:"not null;default:false"`
	SortOrder  int       `gorm:"not null;default:0"`
	IsActive   bool      `gorm:"not null;default:true"`
	// Options holds the JSON-encoded option list; meaningful only for
	// SELECT templates, NULL otherwise.
	Options *string `gorm:"type:text"`
}

// TableName specifies the table name for the FieldTemplate model.
func (FieldTemplate) TableName() string {
	return "field_templates"
}

// OptionValues decodes the stored option list. Corrupt or absent data yields
// an empty slice; rendering must never fail because of it.
func (t *FieldTemplate) OptionValues() []string {
	return DecodeOptions(t.Options)
}

// --- DTOs ---

// TemplateResponse defines the structure for template data in API responses.
type TemplateResponse struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type"`
	Required   bool      `json:"required"`
	SortOrder  int       `json:"sort_order"`
	IsActive   bool      `json:"is_active"`
	Options    []string  `json:"options,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToTemplateResponse converts a FieldTemplate model to its API representation.
func ToTemplateResponse(t *FieldTemplate) TemplateResponse {
	resp := TemplateResponse{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		Key:        t.Key,
		Label:      t.Label,
		Type:       t.Type,
		Required:   t.Required,
		SortOrder:  t.SortOrder,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.Type == TypeSelect {
		resp.Options = t.OptionValues()
	}
	return resp
}

// AdminCreateTemplateRequest for admin creating a template.
type AdminCreateTemplateRequest struct {
	Key       string    `json:"key" binding:"required,max=100"`
	Label     string    `json:"label" binding:"required,max=150"`
	Type      FieldType `json:"type" binding:"required,oneof=TEXT NUMBER SELECT BOOLEAN"`
	Required  bool      `json:"required"`
	SortOrder int       `json:"sort_order"`
	Options   []string  `json:"options,omitempty"`
}

// AdminUpdateTemplateRequest mutates label, required and active only. Key
// and type deliberately have no update path.
type AdminUpdateTemplateRequest struct {
	Label    *string `json:"label,omitempty" binding:"omitempty,max=150"`
	Required *bool   `json:"required,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
