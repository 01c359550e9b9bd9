package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// ValidationResult carries the computed discount for a valid coupon.
type ValidationResult struct {
	Code          string           `json:"code"`
	Type          enums.CouponType `json:"type"`
	DiscountCents int              `json:"discount_cents"`
}

// Service validates codes against a cart subtotal and burns redemptions at
// submit time.
type Service interface {
	Validate(ctx context.Context, code string, subtotalCents int) (*ValidationResult, error)
	Redeem(ctx context.Context, tx *gorm.DB, code string) error
}

type service struct {
	db  *db.Client
	now func() time.Time
}

// NewService constructs the coupon service.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: client, now: time.Now}, nil
}

// Validate checks the code and returns the discount it grants for the given
// subtotal. A discount larger than the subtotal is rejected rather than
// clamped, so the caller's stored discount stays untouched.
func (s *service) Validate(ctx context.Context, code string, subtotalCents int) (*ValidationResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if subtotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be non-negative")
	}

	var coupon models.Coupon
	err := s.db.DB().WithContext(ctx).Where("code = ?", normalized).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}

	now := s.now().UTC()
	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is not active")
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is not active yet")
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon has expired")
	}
	if coupon.MaxRedemptions != nil && coupon.Redemptions >= *coupon.MaxRedemptions {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon redemption limit reached")
	}
	if subtotalCents < coupon.MinSubtotalCents {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subtotal below coupon minimum")
	}

	discount, err := discountCents(&coupon, subtotalCents)
	if err != nil {
		return nil, err
	}
	if discount > subtotalCents {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "discount exceeds subtotal")
	}

	return &ValidationResult{
		Code:          coupon.Code,
		Type:          coupon.Type,
		DiscountCents: discount,
	}, nil
}

// Redeem burns one redemption inside the caller's transaction.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string) error {
	if tx == nil {
		tx = s.db.DB()
	}
	result := tx.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		UpdateColumn("redemptions", gorm.Expr("redemptions + 1"))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "redeem coupon")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

func discountCents(coupon *models.Coupon, subtotalCents int) (int, error) {
	switch coupon.Type {
	case enums.CouponTypeFixed:
		return coupon.AmountOffCents, nil
	case enums.CouponTypePercentage:
		// percent_off is numeric(5,2); round half up to whole cents.
		discount := decimal.NewFromInt(int64(subtotalCents)).
			Mul(coupon.PercentOff).
			Div(decimal.NewFromInt(100)).
			Round(0)
		return int(discount.IntPart()), nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "unknown coupon type")
	}
}
