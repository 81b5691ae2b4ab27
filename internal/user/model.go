// File: internal/user/model.go
package user

import (
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
)

// BillingPlan determines how a seller pays for listings. Pay-per-listing
// sellers get a limited activation window per published listing; subscribers
// do not.
type BillingPlan string

const (
	PlanPayPerListing BillingPlan = "pay_per_listing"
	PlanSubscription  BillingPlan = "subscription"
)

// User represents the user model in the database. Authentication itself is
// delegated to Firebase; only the resolved identity is stored here.
type User struct {
	common.BaseModel
	FirebaseUID string      `gorm:"type:varchar(128);not null;uniqueIndex"`
	Email       *string     `gorm:"type:varchar(255);uniqueIndex"`
	DisplayName *string     `gorm:"type:varchar(150)"`
	Role        string      `gorm:"type:varchar(50);not null;default:'user'"`
	Plan        BillingPlan `gorm:"type:varchar(50);not null;default:'pay_per_listing'"`
	LastLoginAt *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       *string     `json:"email,omitempty"`
	DisplayName *string     `json:"display_name,omitempty"`
	Role        string      `json:"role"`
	Plan        BillingPlan `json:"plan"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ToUserResponse converts a User model to its API representation.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Plan:        u.Plan,
		CreatedAt:   u.CreatedAt,
	}
}

// UpdateProfileRequest allows a user to change display data, never role/plan.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" binding:"omitempty,max=150"`
}
