package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/enums"
)

// OrderTrackingEvent is an append-only log entry recorded whenever an order's
// status changes or an admin attaches carrier tracking details.
type OrderTrackingEvent struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Carrier        *string           `gorm:"column:carrier"`
	TrackingNumber *string           `gorm:"column:tracking_number"`
	Note           *string           `gorm:"column:note"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (e *OrderTrackingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
