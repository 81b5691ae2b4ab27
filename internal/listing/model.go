// File: internal/listing/model.go

// Package listing implements the marketplace listing lifecycle: drafting,
// publishing with per-category field validation, browsing with dynamic
// filters, and moderation.
package listing

import (
	"strings"
	"time"

	"marketplace_backend/internal/category"
	"marketplace_backend/internal/city"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a listing. REMOVED is terminal and only
// reachable through moderation.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusRemoved  Status = "REMOVED"
)

// Condition describes the physical state of the offered item.
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Intent is what the seller asked for on save. Publishing triggers
// validation; a plain save never does.
const (
	IntentPublish = "publish"
	IntentSave    = "save"
)

type Listing struct {
	common.BaseModel
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	User          *user.User         `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CategoryID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	Category      category.Category  `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	SubCategoryID *uuid.UUID         `gorm:"type:uuid;index"`
	SubCategory   *category.Category `gorm:"foreignKey:SubCategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CityID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	City          city.City          `gorm:"foreignKey:CityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Title         string             `gorm:"type:varchar(255);not null"`
	Description   string             `gorm:"type:text;not null"`
	PriceCents    int64              `gorm:"not null;default:0"`
	Currency      string             `gorm:"type:varchar(3);not null"`
	Condition     Condition          `gorm:"type:varchar(20);not null;default:'used'"`
	Status        Status             `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	// ActiveUntil is set on publish for pay-per-listing sellers and left
	// NULL for subscription sellers.
	ActiveUntil *time.Time     `gorm:"index"`
	Images      []ListingImage `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
	FieldValues []FieldValue   `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
}

func (Listing) TableName() string {
	return "listings"
}

// FieldValueMap flattens the loaded field-value rows into key -> value form.
func (l *Listing) FieldValueMap() map[string]string {
	values := make(map[string]string, len(l.FieldValues))
	for _, fv := range l.FieldValues {
		values[fv.Key] = fv.Value
	}
	return values
}

// FieldValue is one dynamic attribute of a listing. Values are stored as
// strings regardless of the template type that produced them; interpretation
// happens at validation and display time only. The composite key enforces one
// value per (listing, key) pair.
type FieldValue struct {
	ListingID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
}

func (FieldValue) TableName() string {
	return "listing_field_values"
}

// ListingImage stores the relative path of one uploaded photo.
type ListingImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	ImagePath string    `gorm:"type:text;not null" json:"-"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}

// BeforeCreate assigns the UUID client-side so the model works on databases
// without a uuid default function.
func (li *ListingImage) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// ImageURL joins the public base URL with the stored relative path.
func (li *ListingImage) ImageURL(baseURL string) string {
	if li.ImagePath == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(li.ImagePath, "/")
}

// --- DTOs for API ---

// CreateListingRequest carries the fixed fields of a multipart listing
// submission. Dynamic fields arrive alongside it with the reserved prefix and
// are extracted separately; images arrive as file parts.
type CreateListingRequest struct {
	CategoryID    uuid.UUID  `form:"category_id" binding:"required"`
	SubCategoryID *uuid.UUID `form:"sub_category_id"`
	CityID        uuid.UUID  `form:"city_id" binding:"required"`
	Title         string     `form:"title" binding:"required,max=255"`
	Description   string     `form:"description" binding:"omitempty,max=10000"`
	Price         string     `form:"price"`
	Currency      string     `form:"currency" binding:"omitempty,len=3"`
	Condition     Condition  `form:"condition" binding:"omitempty,oneof=new used"`
	Intent        string     `form:"intent" binding:"omitempty,oneof=publish save"`
}

// UpdateListingRequest mirrors the create form; absent fields keep their
// stored value. Dynamic fields are always a full replacement, never a patch.
type UpdateListingRequest struct {
	CategoryID     *uuid.UUID  `form:"category_id"`
	SubCategoryID  *uuid.UUID  `form:"sub_category_id"`
	CityID         *uuid.UUID  `form:"city_id"`
	Title          *string     `form:"title" binding:"omitempty,max=255"`
	Description    *string     `form:"description" binding:"omitempty,max=10000"`
	Price          *string     `form:"price"`
	Currency       *string     `form:"currency" binding:"omitempty,len=3"`
	Condition      *Condition  `form:"condition" binding:"omitempty,oneof=new used"`
	Intent         string      `form:"intent" binding:"omitempty,oneof=publish save"`
	RemoveImageIDs []uuid.UUID `form:"remove_image_ids"`
}

// UpdateMyListingStatusRequest lets a seller pause or resume their listing.
type UpdateMyListingStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// AdminUpdateListingStatusRequest is the moderation surface. REMOVED is
// reachable only here.
type AdminUpdateListingStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=ACTIVE INACTIVE REMOVED"`
}

// BrowseQuery holds the fixed browse filters. Dynamic filters use the
// reserved prefix on the query string and are extracted separately.
type BrowseQuery struct {
	common.PaginationQuery
	CategorySlug    string `form:"category"`
	SubCategorySlug string `form:"subcategory"`
	CityID          string `form:"city_id"`
	SearchTerm      string `form:"q"`
	Condition       string `form:"condition"`
	PriceMin        string `form:"price_min"`
	PriceMax        string `form:"price_max"`
	Sort            string `form:"sort"`

	// Fields carries the scoped dynamic filters, populated at the handler
	// boundary from the raw query string.
	Fields map[string]string `form:"-"`
}

// MyListingsQuery filters the seller's own listings.
type MyListingsQuery struct {
	common.PaginationQuery
	Status *Status `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE INACTIVE REMOVED"`
}

type ListingImageResponse struct {
	ID        uuid.UUID `json:"id"`
	ImageURL  string    `json:"image_url"`
	SortOrder int       `json:"sort_order"`
}

type ListingResponse struct {
	ID            uuid.UUID                  `json:"id"`
	UserID        uuid.UUID                  `json:"user_id"`
	User          *user.UserResponse         `json:"user,omitempty"`
	CategoryID    uuid.UUID                  `json:"category_id"`
	Category      *category.CategoryResponse `json:"category,omitempty"`
	SubCategoryID *uuid.UUID                 `json:"sub_category_id,omitempty"`
	CityID        uuid.UUID                  `json:"city_id"`
	CityName      string                     `json:"city_name,omitempty"`
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	PriceCents    int64                      `json:"price_cents"`
	Currency      string                     `json:"currency"`
	Condition     Condition                  `json:"condition"`
	Status        Status                     `json:"status"`
	ActiveUntil   *time.Time                 `json:"active_until,omitempty"`
	Fields        map[string]string          `json:"fields"`
	Images        []ListingImageResponse     `json:"images,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// ToListingResponse converts a Listing model to its API representation.
func ToListingResponse(l *Listing, imageBaseURL string) ListingResponse {
	resp := ListingResponse{
		ID:            l.ID,
		UserID:        l.UserID,
		CategoryID:    l.CategoryID,
		SubCategoryID: l.SubCategoryID,
		CityID:        l.CityID,
		Title:         l.Title,
		Description:   l.Description,
		PriceCents:    l.PriceCents,
		Currency:      l.Currency,
		Condition:     l.Condition,
		Status:        l.Status,
		ActiveUntil:   l.ActiveUntil,
		Fields:        l.FieldValueMap(),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	if l.User != nil {
		userResp := user.ToUserResponse(l.User)
		resp.User = &userResp
	}
	if l.Category.ID != uuid.Nil {
		catResp := category.ToCategoryResponse(&l.Category)
		resp.Category = &catResp
	}
	if l.City.ID != uuid.Nil {
		resp.CityName = l.City.Name
	}
	if len(l.Images) > 0 {
		resp.Images = make([]ListingImageResponse, len(l.Images))
		for i, img := range l.Images {
			resp.Images[i] = ListingImageResponse{
				ID:        img.ID,
				ImageURL:  img.ImageURL(imageBaseURL),
				SortOrder: img.SortOrder,
			}
		}
	}
	return resp
}
