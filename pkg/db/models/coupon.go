package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/enums"
)

// Coupon is a storefront discount code. Percentage coupons carry PercentOff;
// fixed coupons carry AmountOffCents.
type Coupon struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Code             string           `gorm:"column:code;not null;uniqueIndex"`
	Type             enums.CouponType `gorm:"column:type;type:text;not null"`
	PercentOff       decimal.Decimal  `gorm:"column:percent_off;type:numeric(5,2);not null;default:0"`
	AmountOffCents   int              `gorm:"column:amount_off_cents;not null;default:0"`
	MinSubtotalCents int              `gorm:"column:min_subtotal_cents;not null;default:0"`
	MaxRedemptions   *int             `gorm:"column:max_redemptions"`
	Redemptions      int              `gorm:"column:redemptions;not null;default:0"`
	StartsAt         *time.Time       `gorm:"column:starts_at"`
	ExpiresAt        *time.Time       `gorm:"column:expires_at"`
	IsActive         bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
