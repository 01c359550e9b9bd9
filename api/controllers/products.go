package controllers

import (
	"net/http"
	"strings"

	"github.com/mateoreyes/drivehub-backend/api/responses"
	"github.com/mateoreyes/drivehub-backend/api/validators"
	"github.com/mateoreyes/drivehub-backend/internal/products"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/logger"
	"github.com/mateoreyes/drivehub-backend/pkg/pagination"
)

// ProductsList serves the public browse endpoint.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := listFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), products.ListInput{
			Filters:    filters,
			Pagination: pagination.Params{Page: page, PerPage: perPage},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductsGet serves a single listing by id.
func ProductsGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductsCreate adds a listing owned by the caller.
func ProductsCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		sellerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), sellerID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductsUpdate mutates a listing owned by the caller.
func ProductsUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		sellerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), sellerID, productID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductsDelete removes a listing owned by the caller.
func ProductsDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		sellerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), sellerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createProductRequest struct {
	Title         string  `json:"title" validate:"required"`
	SKU           string  `json:"sku" validate:"required"`
	Description   *string `json:"description,omitempty"`
	Make          *string `json:"make,omitempty"`
	Model         *string `json:"model,omitempty"`
	Year          *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Mileage       *int    `json:"mileage,omitempty" validate:"omitempty,min=0"`
	VIN           *string `json:"vin,omitempty"`
	PriceCents    int     `json:"price_cents" validate:"required,min=1"`
	StockQty      int     `json:"stock_qty" validate:"min=0"`
	FeaturedImage *string `json:"featured_image,omitempty"`
	IsActive      bool    `json:"is_active"`
}

func (b createProductRequest) toInput() products.CreateProductInput {
	return products.CreateProductInput{
		Title:         b.Title,
		SKU:           b.SKU,
		Description:   b.Description,
		Make:          b.Make,
		Model:         b.Model,
		Year:          b.Year,
		Mileage:       b.Mileage,
		VIN:           b.VIN,
		PriceCents:    b.PriceCents,
		StockQty:      b.StockQty,
		FeaturedImage: b.FeaturedImage,
		IsActive:      b.IsActive,
	}
}

type updateProductRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Make          *string `json:"make,omitempty"`
	Model         *string `json:"model,omitempty"`
	Year          *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Mileage       *int    `json:"mileage,omitempty" validate:"omitempty,min=0"`
	VIN           *string `json:"vin,omitempty"`
	PriceCents    *int    `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	StockQty      *int    `json:"stock_qty,omitempty" validate:"omitempty,min=0"`
	FeaturedImage *string `json:"featured_image,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func (b updateProductRequest) toInput() products.UpdateProductInput {
	return products.UpdateProductInput{
		Title:         b.Title,
		Description:   b.Description,
		Make:          b.Make,
		Model:         b.Model,
		Year:          b.Year,
		Mileage:       b.Mileage,
		VIN:           b.VIN,
		PriceCents:    b.PriceCents,
		StockQty:      b.StockQty,
		FeaturedImage: b.FeaturedImage,
		IsActive:      b.IsActive,
	}
}

func listFiltersFromQuery(r *http.Request) (products.ListFilters, error) {
	var filters products.ListFilters

	if v := strings.TrimSpace(r.URL.Query().Get("make")); v != "" {
		filters.Make = &v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("model")); v != "" {
		filters.Model = &v
	}
	filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	intFilters := []struct {
		key string
		dst **int
		min int
		max int
	}{
		{"year_min", &filters.YearMin, 1900, 2100},
		{"year_max", &filters.YearMax, 1900, 2100},
		{"price_min_cents", &filters.PriceMinCents, 0, 1 << 40},
		{"price_max_cents", &filters.PriceMaxCents, 0, 1 << 40},
	}
	for _, f := range intFilters {
		if strings.TrimSpace(r.URL.Query().Get(f.key)) == "" {
			continue
		}
		value, err := validators.ParseQueryInt(r, f.key, 0, f.min, f.max)
		if err != nil {
			return products.ListFilters{}, err
		}
		v := value
		*f.dst = &v
	}

	return filters, nil
}
