package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/pagination"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

// ProductDTO is the storefront shape of a listing.
type ProductDTO struct {
	ID            uuid.UUID  `json:"id"`
	SellerID      uuid.UUID  `json:"seller_id"`
	Title         string     `json:"title"`
	SKU           string     `json:"sku"`
	Description   *string    `json:"description,omitempty"`
	Make          *string    `json:"make,omitempty"`
	Model         *string    `json:"model,omitempty"`
	Year          *int       `json:"year,omitempty"`
	Mileage       *int       `json:"mileage,omitempty"`
	VIN           *string    `json:"vin,omitempty"`
	PriceCents    int        `json:"price_cents"`
	StockQty      int        `json:"stock_qty"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	IsActive      bool       `json:"is_active"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Make          *string `json:"make,omitempty"`
	Model         *string `json:"model,omitempty"`
	YearMin       *int    `json:"year_min,omitempty"`
	YearMax       *int    `json:"year_max,omitempty"`
	PriceMinCents *int    `json:"price_min_cents,omitempty"`
	PriceMaxCents *int    `json:"price_max_cents,omitempty"`
	Query         string  `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter listings.
type ListInput struct {
	Filters     ListFilters
	Pagination  pagination.Params
	IncludeSold bool
}

// ListResult is a page of listings plus the pagination block.
type ListResult struct {
	Products   []ProductDTO     `json:"products"`
	Pagination types.Pagination `json:"pagination"`
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Title         string
	SKU           string
	Description   *string
	Make          *string
	Model         *string
	Year          *int
	Mileage       *int
	VIN           *string
	PriceCents    int
	StockQty      int
	FeaturedImage *string
	IsActive      bool
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Title         *string
	Description   *string
	Make          *string
	Model         *string
	Year          *int
	Mileage       *int
	VIN           *string
	PriceCents    *int
	StockQty      *int
	FeaturedImage *string
	IsActive      *bool
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:            p.ID,
		SellerID:      p.SellerID,
		Title:         p.Title,
		SKU:           p.SKU,
		Description:   p.Description,
		Make:          p.Make,
		Model:         p.Model,
		Year:          p.Year,
		Mileage:       p.Mileage,
		VIN:           p.VIN,
		PriceCents:    p.PriceCents,
		StockQty:      p.StockQty,
		FeaturedImage: p.FeaturedImage,
		IsActive:      p.IsActive,
		SoldAt:        p.SoldAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
