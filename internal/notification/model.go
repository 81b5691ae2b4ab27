// File: internal/notification/model.go

// Package notification stores per-user in-app notifications emitted by
// listing lifecycle events.
package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type labels what happened to the related listing.
type Type string

const (
	TypeListingPublished Type = "listing_published"
	TypeListingExpired   Type = "listing_expired"
	TypeListingRemoved   Type = "listing_removed"
)

// Notification represents a user notification. Notifications are immutable
// once created; only the read flag changes.
type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"user_id"`
	Type             Type       `gorm:"type:varchar(50);not null" json:"type"`
	Message          string     `gorm:"type:text;not null" json:"message"`
	RelatedListingID *uuid.UUID `gorm:"type:uuid" json:"related_listing_id,omitempty"`
	IsRead           bool       `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt        time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the UUID client-side so the model works on databases
// without a uuid default function.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
