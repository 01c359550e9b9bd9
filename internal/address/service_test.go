package address

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
)

func openAddressTestDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Address{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewFromConn(conn)
}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := openAddressTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, client
}

func createRequest(line1 string) CreateAddressRequest {
	return CreateAddressRequest{
		FullName:   "Rosa Vega",
		Phone:      "555-0101",
		Line1:      line1,
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
	}
}

func TestCreateFirstAddressBecomesPrimary(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, createRequest("100 Congress Ave"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsPrimary {
		t.Fatal("first address should be primary")
	}
	if created.Country != "US" {
		t.Fatalf("expected default country US, got %q", created.Country)
	}
}

func TestCreatePrimaryDemotesPrevious(t *testing.T) {
	svc, client := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, createRequest("100 Congress Ave"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	req := createRequest("200 Guadalupe St")
	req.IsPrimary = true
	second, err := svc.Create(ctx, userID, req)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if !second.IsPrimary {
		t.Fatal("second address should be primary when requested")
	}

	var primaries []models.Address
	if err := client.DB().Where("user_id = ? AND is_primary = ?", userID, true).Find(&primaries).Error; err != nil {
		t.Fatalf("load primaries: %v", err)
	}
	if len(primaries) != 1 {
		t.Fatalf("expected exactly one primary, got %d", len(primaries))
	}
	if primaries[0].ID != second.ID {
		t.Fatalf("expected %s to be primary, got %s", second.ID, primaries[0].ID)
	}
	_ = first
}

func TestSetPrimarySwapsFlag(t *testing.T) {
	svc, client := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, createRequest("100 Congress Ave"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, userID, createRequest("200 Guadalupe St"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.IsPrimary {
		t.Fatal("second address should not start primary")
	}

	promoted, err := svc.SetPrimary(ctx, userID, second.ID)
	if err != nil {
		t.Fatalf("set primary: %v", err)
	}
	if !promoted.IsPrimary {
		t.Fatal("expected promoted entry to be primary")
	}

	var old models.Address
	if err := client.DB().First(&old, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("load old primary: %v", err)
	}
	if old.IsPrimary {
		t.Fatal("previous primary should have been demoted")
	}
}

func TestSetPrimaryUnknownAddress(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetPrimary(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeletePrimaryPromotesRemaining(t *testing.T) {
	svc, client := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, createRequest("100 Congress Ave"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, userID, createRequest("200 Guadalupe St"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if err := svc.Delete(ctx, userID, first.ID); err != nil {
		t.Fatalf("delete primary: %v", err)
	}

	var remaining models.Address
	if err := client.DB().First(&remaining, "id = ?", second.ID).Error; err != nil {
		t.Fatalf("load remaining: %v", err)
	}
	if !remaining.IsPrimary {
		t.Fatal("remaining address should have been promoted to primary")
	}
}

func TestListOtherUsersInvisible(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	if _, err := svc.Create(ctx, owner, createRequest("100 Congress Ave")); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := svc.List(ctx, stranger)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty list for other user, got %d", len(rows))
	}
}

func TestUpdateRejectsInvalidType(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, userID, createRequest("100 Congress Ave"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "warehouse"
	_, err = svc.Update(ctx, userID, created.ID, UpdateAddressRequest{Type: &bad})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
