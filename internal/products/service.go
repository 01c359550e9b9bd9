package products

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

// Service exposes storefront browsing plus seller listing management.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, sellerID, productID uuid.UUID) error
}

type service struct {
	db *db.Client
}

// NewService constructs the listings service.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: client}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	repo := NewRepository(s.db.DB())
	rows, total, err := repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return &ListResult{
		Products:   fromModels(rows),
		Pagination: input.Pagination.Describe(total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	repo := NewRepository(s.db.DB())
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return FromModel(row), nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if input.StockQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_qty must be non-negative")
	}

	row := &models.Product{
		SellerID:      sellerID,
		Title:         strings.TrimSpace(input.Title),
		SKU:           strings.TrimSpace(input.SKU),
		Description:   input.Description,
		Make:          input.Make,
		Model:         input.Model,
		Year:          input.Year,
		Mileage:       input.Mileage,
		VIN:           input.VIN,
		PriceCents:    input.PriceCents,
		StockQty:      input.StockQty,
		FeaturedImage: input.FeaturedImage,
		IsActive:      input.IsActive,
	}

	repo := NewRepository(s.db.DB())
	created, err := repo.Create(ctx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		row, err := repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if row.SellerID != sellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
		}

		applyProductUpdates(row, input)
		if row.PriceCents < 0 || row.StockQty < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "price and stock must be non-negative")
		}

		updated, err = repo.Save(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, sellerID, productID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		row, err := repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if row.SellerID != sellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
		}
		if err := repo.Delete(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
		}
		return nil
	})
}

func applyProductUpdates(row *models.Product, input UpdateProductInput) {
	if input.Title != nil {
		row.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.Make != nil {
		row.Make = input.Make
	}
	if input.Model != nil {
		row.Model = input.Model
	}
	if input.Year != nil {
		row.Year = input.Year
	}
	if input.Mileage != nil {
		row.Mileage = input.Mileage
	}
	if input.VIN != nil {
		row.VIN = input.VIN
	}
	if input.PriceCents != nil {
		row.PriceCents = *input.PriceCents
	}
	if input.StockQty != nil {
		row.StockQty = *input.StockQty
	}
	if input.FeaturedImage != nil {
		row.FeaturedImage = input.FeaturedImage
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
}
