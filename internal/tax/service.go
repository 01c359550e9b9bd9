package tax

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// Service computes destination-based sales tax.
type Service interface {
	// CalculateCents taxes the post-discount amount for the destination state.
	// States without a configured rate are untaxed.
	CalculateCents(ctx context.Context, state string, taxableCents int) (int, error)
}

type service struct {
	db *db.Client
}

// NewService constructs the tax service.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: client}, nil
}

func (s *service) CalculateCents(ctx context.Context, state string, taxableCents int) (int, error) {
	normalized := strings.ToUpper(strings.TrimSpace(state))
	if normalized == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "state is required")
	}
	if taxableCents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "taxable amount must be non-negative")
	}
	if taxableCents == 0 {
		return 0, nil
	}

	var rate models.TaxRate
	err := s.db.DB().WithContext(ctx).
		Where("state = ? AND is_active = ?", normalized, true).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tax rate")
	}

	// rate is a percentage; round half up to whole cents.
	tax := decimal.NewFromInt(int64(taxableCents)).
		Mul(rate.Rate).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return int(tax.IntPart()), nil
}
