package shipping

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// MethodDTO is the storefront shape of a shipping option.
type MethodDTO struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	FlatRateCents int       `json:"flat_rate_cents"`
	EstimatedDays int       `json:"estimated_days"`
}

// Service exposes shipping options and their cost for a given subtotal.
type Service interface {
	ListMethods(ctx context.Context) ([]MethodDTO, error)
	CostFor(ctx context.Context, code string, subtotalCents int) (int, error)
}

type service struct {
	db *db.Client
}

// NewService constructs the shipping service.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: client}, nil
}

func (s *service) ListMethods(ctx context.Context) ([]MethodDTO, error) {
	var rows []models.ShippingMethod
	err := s.db.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Order("flat_rate_cents ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipping methods")
	}

	out := make([]MethodDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, MethodDTO{
			ID:            row.ID,
			Code:          row.Code,
			Name:          row.Name,
			FlatRateCents: row.FlatRateCents,
			EstimatedDays: row.EstimatedDays,
		})
	}
	return out, nil
}

// CostFor returns the shipping charge in cents. Methods with a free-above
// threshold cost nothing once the subtotal reaches it.
func (s *service) CostFor(ctx context.Context, code string, subtotalCents int) (int, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shipping method code is required")
	}

	var method models.ShippingMethod
	err := s.db.DB().WithContext(ctx).
		Where("code = ? AND is_active = ?", normalized, true).
		First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "shipping method not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipping method")
	}

	if method.FreeAboveCents != nil && subtotalCents >= *method.FreeAboveCents {
		return 0, nil
	}
	return method.FlatRateCents, nil
}
