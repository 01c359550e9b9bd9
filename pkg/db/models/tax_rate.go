package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxRate maps a destination state to its sales-tax percentage.
type TaxRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	State     string          `gorm:"column:state;not null;uniqueIndex"`
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(5,2);not null"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *TaxRate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
