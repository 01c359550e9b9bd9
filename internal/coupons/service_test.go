package coupons

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

func openCouponTestDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Coupon{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewFromConn(conn)
}

func seedCoupon(t *testing.T, client *db.Client, coupon *models.Coupon) {
	t.Helper()
	if err := client.DB().Create(coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
}

func TestValidatePercentageCoupon(t *testing.T) {
	client := openCouponTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	seedCoupon(t, client, &models.Coupon{
		Code:       "SAVE10",
		Type:       enums.CouponTypePercentage,
		PercentOff: decimal.NewFromInt(10),
		IsActive:   true,
	})

	result, err := svc.Validate(context.Background(), "save10", 20000)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.DiscountCents != 2000 {
		t.Fatalf("expected 2000 cents off, got %d", result.DiscountCents)
	}
	if result.Code != "SAVE10" {
		t.Fatalf("expected normalized code, got %q", result.Code)
	}
}

func TestValidateFixedCoupon(t *testing.T) {
	client := openCouponTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	seedCoupon(t, client, &models.Coupon{
		Code:           "TENOFF",
		Type:           enums.CouponTypeFixed,
		AmountOffCents: 1000,
		IsActive:       true,
	})

	result, err := svc.Validate(context.Background(), "TENOFF", 5000)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.DiscountCents != 1000 {
		t.Fatalf("expected 1000 cents off, got %d", result.DiscountCents)
	}
}

func TestValidateRejectsDiscountExceedingSubtotal(t *testing.T) {
	client := openCouponTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	seedCoupon(t, client, &models.Coupon{
		Code:           "BIGOFF",
		Type:           enums.CouponTypeFixed,
		AmountOffCents: 10000,
		IsActive:       true,
	})

	_, err = svc.Validate(context.Background(), "BIGOFF", 5000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestValidateLifecycleRules(t *testing.T) {
	client := openCouponTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()
	max := 1

	cases := []struct {
		name   string
		coupon models.Coupon
	}{
		{name: "inactive", coupon: models.Coupon{Code: "C1", Type: enums.CouponTypeFixed, AmountOffCents: 100, IsActive: false}},
		{name: "expired", coupon: models.Coupon{Code: "C2", Type: enums.CouponTypeFixed, AmountOffCents: 100, IsActive: true, ExpiresAt: &past}},
		{name: "not yet started", coupon: models.Coupon{Code: "C3", Type: enums.CouponTypeFixed, AmountOffCents: 100, IsActive: true, StartsAt: &future}},
		{name: "exhausted", coupon: models.Coupon{Code: "C4", Type: enums.CouponTypeFixed, AmountOffCents: 100, IsActive: true, MaxRedemptions: &max, Redemptions: 1}},
		{name: "below minimum", coupon: models.Coupon{Code: "C5", Type: enums.CouponTypeFixed, AmountOffCents: 100, IsActive: true, MinSubtotalCents: 100000}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seedCoupon(t, client, &tc.coupon)
			_, err := svc.Validate(context.Background(), tc.coupon.Code, 20000)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
				t.Fatalf("expected state conflict, got %v", err)
			}
		})
	}
}

func TestValidateUnknownCoupon(t *testing.T) {
	client := openCouponTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Validate(context.Background(), "NOPE", 20000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedeemIncrements(t *testing.T) {
	client := openCouponTestDB(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	seedCoupon(t, client, &models.Coupon{
		Code:           "BURN",
		Type:           enums.CouponTypeFixed,
		AmountOffCents: 100,
		IsActive:       true,
	})

	if err := svc.Redeem(context.Background(), nil, "burn"); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	var stored models.Coupon
	if err := client.DB().First(&stored, "code = ?", "BURN").Error; err != nil {
		t.Fatalf("load coupon: %v", err)
	}
	if stored.Redemptions != 1 {
		t.Fatalf("expected 1 redemption, got %d", stored.Redemptions)
	}
}
