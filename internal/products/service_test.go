package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/pagination"
)

func openProductTestDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewFromConn(conn)
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func seedListing(t *testing.T, svc Service, sellerID uuid.UUID, title, sku, make string, year, priceCents int) *ProductDTO {
	t.Helper()
	created, err := svc.Create(context.Background(), sellerID, CreateProductInput{
		Title:      title,
		SKU:        sku,
		Make:       strPtr(make),
		Year:       intPtr(year),
		PriceCents: priceCents,
		StockQty:   1,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("seed listing %s: %v", sku, err)
	}
	return created
}

func TestListFiltersByMakeAndPrice(t *testing.T) {
	client := openProductTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sellerID := uuid.New()

	seedListing(t, svc, sellerID, "2019 Civic", "CAR-1", "Honda", 2019, 1500000)
	seedListing(t, svc, sellerID, "2021 Accord", "CAR-2", "Honda", 2021, 2500000)
	seedListing(t, svc, sellerID, "2020 Model 3", "CAR-3", "Tesla", 2020, 3500000)

	result, err := svc.List(context.Background(), ListInput{
		Filters: ListFilters{
			Make:          strPtr("Honda"),
			PriceMaxCents: intPtr(2000000),
		},
		Pagination: pagination.Params{Page: 1, PerPage: 10},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result.Products))
	}
	if result.Products[0].SKU != "CAR-1" {
		t.Fatalf("expected CAR-1, got %s", result.Products[0].SKU)
	}
	if result.Pagination.Total != 1 {
		t.Fatalf("expected total 1, got %d", result.Pagination.Total)
	}
}

func TestListQueryMatchesTitle(t *testing.T) {
	client := openProductTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sellerID := uuid.New()

	seedListing(t, svc, sellerID, "2019 Civic", "CAR-1", "Honda", 2019, 1500000)
	seedListing(t, svc, sellerID, "2020 Model 3", "CAR-3", "Tesla", 2020, 3500000)

	result, err := svc.List(context.Background(), ListInput{
		Filters:    ListFilters{Query: "civic"},
		Pagination: pagination.Params{Page: 1, PerPage: 10},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].SKU != "CAR-1" {
		t.Fatalf("expected only CAR-1, got %+v", result.Products)
	}
}

func TestListExcludesInactiveAndSold(t *testing.T) {
	client := openProductTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sellerID := uuid.New()

	active := seedListing(t, svc, sellerID, "2019 Civic", "CAR-1", "Honda", 2019, 1500000)
	hidden := seedListing(t, svc, sellerID, "2021 Accord", "CAR-2", "Honda", 2021, 2500000)

	inactive := false
	if _, err := svc.Update(context.Background(), sellerID, hidden.ID, UpdateProductInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	result, err := svc.List(context.Background(), ListInput{
		Pagination: pagination.Params{Page: 1, PerPage: 10},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != active.ID {
		t.Fatalf("expected only the active listing, got %+v", result.Products)
	}
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	client := openProductTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sellerID := uuid.New()

	seedListing(t, svc, sellerID, "2019 Civic", "CAR-1", "Honda", 2019, 1500000)

	_, err = svc.Create(context.Background(), sellerID, CreateProductInput{
		Title:      "Duplicate",
		SKU:        "CAR-1",
		PriceCents: 100,
		StockQty:   1,
		IsActive:   true,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestUpdateRejectsOtherSeller(t *testing.T) {
	client := openProductTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	owner := uuid.New()
	listing := seedListing(t, svc, owner, "2019 Civic", "CAR-1", "Honda", 2019, 1500000)

	price := 1
	_, err = svc.Update(context.Background(), uuid.New(), listing.ID, UpdateProductInput{PriceCents: &price})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestGetUnknownProduct(t *testing.T) {
	client := openProductTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
