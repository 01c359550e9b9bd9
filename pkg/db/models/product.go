package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a storefront listing. Cars carry make/model/year; accessories
// leave those fields nil and rely on stock quantity instead.
type Product struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SellerID      uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index"`
	Title         string     `gorm:"column:title;not null"`
	SKU           string     `gorm:"column:sku;not null;uniqueIndex"`
	Description   *string    `gorm:"column:description"`
	Make          *string    `gorm:"column:make;index"`
	Model         *string    `gorm:"column:model;index"`
	Year          *int       `gorm:"column:year"`
	Mileage       *int       `gorm:"column:mileage"`
	VIN           *string    `gorm:"column:vin"`
	PriceCents    int        `gorm:"column:price_cents;not null"`
	StockQty      int        `gorm:"column:stock_qty;not null;default:1"`
	FeaturedImage *string    `gorm:"column:featured_image"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`
	SoldAt        *time.Time `gorm:"column:sold_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
