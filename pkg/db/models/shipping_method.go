package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingMethod is a deliverable option with a flat rate and an optional
// free-shipping subtotal threshold.
type ShippingMethod struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code           string    `gorm:"column:code;not null;uniqueIndex"`
	Name           string    `gorm:"column:name;not null"`
	FlatRateCents  int       `gorm:"column:flat_rate_cents;not null"`
	FreeAboveCents *int      `gorm:"column:free_above_cents"`
	EstimatedDays  int       `gorm:"column:estimated_days;not null;default:7"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *ShippingMethod) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
