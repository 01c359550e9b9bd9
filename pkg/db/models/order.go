package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

// Order is the persisted result of a checkout submission. Line items and
// address snapshots are immutable once created; only status, payment status
// and tracking events change afterwards, and only through admin operations.
type Order struct {
	ID              uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderNumber     string               `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          *uuid.UUID           `gorm:"column:user_id;type:uuid;index"`
	Email           string               `gorm:"column:email;not null"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null"`
	ShippingAddress types.Address        `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.Address        `gorm:"column:billing_address;type:jsonb;serializer:json"`
	CouponCode      *string              `gorm:"column:coupon_code"`
	SubtotalCents   int                  `gorm:"column:subtotal_cents;not null"`
	DiscountCents   int                  `gorm:"column:discount_cents;not null;default:0"`
	ShippingCents   int                  `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents        int                  `gorm:"column:tax_cents;not null;default:0"`
	TotalCents      int                  `gorm:"column:total_cents;not null"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TrackingEvents  []OrderTrackingEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt          *time.Time           `gorm:"column:paid_at"`
	ShippedAt       *time.Time           `gorm:"column:shipped_at"`
	CompletedAt     *time.Time           `gorm:"column:completed_at"`
	CancelledAt     *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
