package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/mateoreyes/drivehub-backend/internal/coupons"
	"github.com/mateoreyes/drivehub-backend/internal/orders"
	"github.com/mateoreyes/drivehub-backend/internal/products"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeStore) CheckoutSessionKey(id string) string {
	return "dh:checkout:" + id
}

type stubCatalog struct {
	listings map[uuid.UUID]*products.ProductDTO
}

func (s *stubCatalog) Get(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	listing, ok := s.listings[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return listing, nil
}

type stubCoupons struct {
	results map[string]*coupons.ValidationResult
}

func (s *stubCoupons) Validate(ctx context.Context, code string, subtotalCents int) (*coupons.ValidationResult, error) {
	result, ok := s.results[code]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return result, nil
}

type stubShipping struct {
	costs map[string]int
}

func (s *stubShipping) CostFor(ctx context.Context, code string, subtotalCents int) (int, error) {
	cost, ok := s.costs[code]
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "shipping method not found")
	}
	return cost, nil
}

type stubTax struct {
	rates map[string]int
}

func (s *stubTax) CalculateCents(ctx context.Context, state string, taxableCents int) (int, error) {
	return s.rates[state], nil
}

type stubOrders struct {
	created *orders.CreateOrderInput
}

func (s *stubOrders) Create(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	s.created = &input
	return &orders.OrderDTO{ID: uuid.New(), OrderNumber: "DH-20260115-ABC123"}, nil
}

func newCheckoutService(t *testing.T) (Service, *stubOrders, *fakeStore, uuid.UUID) {
	t.Helper()
	productID := uuid.New()
	catalog := &stubCatalog{listings: map[uuid.UUID]*products.ProductDTO{
		productID: {ID: productID, Title: "2019 Civic", SKU: "CAR-1", PriceCents: 100, StockQty: 5, IsActive: true},
	}}
	couponStub := &stubCoupons{results: map[string]*coupons.ValidationResult{
		"SAVE20": {Code: "SAVE20", Type: enums.CouponTypeFixed, DiscountCents: 20},
	}}
	shippingStub := &stubShipping{costs: map[string]int{"standard": 10, "express": 50}}
	taxStub := &stubTax{rates: map[string]int{}}
	orderStub := &stubOrders{}
	store := newFakeStore()

	svc, err := NewService(ServiceParams{
		Store:      store,
		Catalog:    catalog,
		Coupons:    couponStub,
		Shipping:   shippingStub,
		Tax:        taxStub,
		Orders:     orderStub,
		SessionTTL: 2 * time.Hour,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, orderStub, store, productID
}

func checkoutAddress() types.Address {
	return types.Address{
		FullName:   "Rosa Vega",
		Line1:      "100 Congress Ave",
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
		Country:    "US",
	}
}

func TestQuoteDerivesTotalsFromCart(t *testing.T) {
	svc, _, _, productID := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, productID, 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := svc.SetShippingMethod(ctx, session.ID, "standard"); err != nil {
		t.Fatalf("set shipping: %v", err)
	}

	quote, err := svc.QuoteFor(ctx, session.ID)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.SubtotalCents != 200 {
		t.Fatalf("expected subtotal 200, got %d", quote.SubtotalCents)
	}
	if quote.TotalCents != 210 {
		t.Fatalf("expected total 210, got %d", quote.TotalCents)
	}
	if quote.TotalCents != quote.SubtotalCents-quote.DiscountCents+quote.ShippingCents+quote.TaxCents {
		t.Fatalf("totals identity violated: %+v", quote)
	}
}

func TestAdvanceGuardsEmptyCart(t *testing.T) {
	svc, _, _, _ := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.Advance(ctx, session.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAdvanceGuardsBillingRequirements(t *testing.T) {
	svc, _, _, productID := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, productID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := svc.Advance(ctx, session.ID); err != nil {
		t.Fatalf("advance to billing: %v", err)
	}

	// No address or method selected yet.
	_, err = svc.Advance(ctx, session.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	if _, err := svc.SetAddresses(ctx, session.ID, checkoutAddress(), nil); err != nil {
		t.Fatalf("set addresses: %v", err)
	}
	if _, err := svc.SetShippingMethod(ctx, session.ID, "standard"); err != nil {
		t.Fatalf("set shipping: %v", err)
	}

	updated, err := svc.Advance(ctx, session.ID)
	if err != nil {
		t.Fatalf("advance to payment: %v", err)
	}
	if updated.Step != enums.CheckoutStepPayment {
		t.Fatalf("expected payment step, got %s", updated.Step)
	}

	_, err = svc.Advance(ctx, session.ID)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected conflict at final step, got %v", err)
	}
}

func TestBackNavigationAlwaysAllowed(t *testing.T) {
	svc, _, _, productID := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, productID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := svc.Advance(ctx, session.ID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	backed, err := svc.Back(ctx, session.ID)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if backed.Step != enums.CheckoutStepCart {
		t.Fatalf("expected cart step, got %s", backed.Step)
	}

	// Backing out of cart stays at cart.
	backed, err = svc.Back(ctx, session.ID)
	if err != nil {
		t.Fatalf("back at cart: %v", err)
	}
	if backed.Step != enums.CheckoutStepCart {
		t.Fatalf("expected cart step, got %s", backed.Step)
	}
}

func TestApplyCouponInvalidLeavesDiscountUnchanged(t *testing.T) {
	svc, _, _, productID := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, productID, 2); err != nil {
		t.Fatalf("add item: %v", err)
	}

	applied, err := svc.ApplyCoupon(ctx, session.ID, "SAVE20")
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if applied.DiscountCents != 20 {
		t.Fatalf("expected discount 20, got %d", applied.DiscountCents)
	}

	if _, err := svc.ApplyCoupon(ctx, session.ID, "BOGUS"); err == nil {
		t.Fatal("expected error for unknown coupon")
	}

	reloaded, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.DiscountCents != 20 || reloaded.CouponCode == nil || *reloaded.CouponCode != "SAVE20" {
		t.Fatalf("rejected coupon must not disturb prior discount, got %+v", reloaded)
	}
}

func TestRemoveCouponClearsDiscount(t *testing.T) {
	svc, _, _, productID := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, productID, 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := svc.ApplyCoupon(ctx, session.ID, "SAVE20"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	cleared, err := svc.RemoveCoupon(ctx, session.ID)
	if err != nil {
		t.Fatalf("remove coupon: %v", err)
	}
	if cleared.DiscountCents != 0 || cleared.CouponCode != nil {
		t.Fatalf("expected cleared coupon, got %+v", cleared)
	}
}

func TestCartItemOperations(t *testing.T) {
	svc, _, _, productID := newCheckoutService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, nil, "guest@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Adding the same listing twice merges quantities.
	if _, err := svc.AddItem(ctx, session.ID, productID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	updated, err := svc.AddItem(ctx, session.ID, productID, 2)
	if err != nil {
		t.Fatalf("add item again: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].Qty != 3 {
		t.Fatalf("expected merged line qty 3, got %+v", updated.Items)
	}

	updated, err = svc.UpdateItemQty(ctx, session.ID, "CAR-1", 1)
	if err != nil {
		t.Fatalf("update qty: %v", err)
	}
	if updated.Items[0].Qty != 1 {
		t.Fatalf("expected qty 1, got %d", updated.Items[0].Qty)
	}

	if _, err := svc.UpdateItemQty(ctx, session.ID, "CAR-1", 0); err == nil {
		t.Fatal("expected validation error for zero quantity")
	}

	updated, err = svc.RemoveItem(ctx, session.ID, "CAR-1")
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(updated.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", updated.Items)
	}
}

func TestSubmitCreatesOrderAndDiscardsSession(t *testing.T) {
	svc, orderStub, store, productID := newCheckoutService(t)
	ctx := context.Background()
	userID := uuid.New()

	session, err := svc.Start(ctx, &userID, "buyer@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, productID, 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := svc.Advance(ctx, session.ID); err != nil {
		t.Fatalf("advance to billing: %v", err)
	}

	// Submitting before the payment step must be rejected.
	_, err = svc.Submit(ctx, session.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	if _, err := svc.SetAddresses(ctx, session.ID, checkoutAddress(), nil); err != nil {
		t.Fatalf("set addresses: %v", err)
	}
	if _, err := svc.SetShippingMethod(ctx, session.ID, "standard"); err != nil {
		t.Fatalf("set shipping: %v", err)
	}
	if _, err := svc.Advance(ctx, session.ID); err != nil {
		t.Fatalf("advance to payment: %v", err)
	}
	if _, err := svc.SetPaymentMethod(ctx, session.ID, enums.PaymentMethodCard); err != nil {
		t.Fatalf("set payment method: %v", err)
	}

	order, err := svc.Submit(ctx, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.OrderNumber == "" {
		t.Fatal("expected order number in response")
	}

	if orderStub.created == nil {
		t.Fatal("expected order creation call")
	}
	if orderStub.created.SubtotalCents != 200 || orderStub.created.TotalCents != 210 {
		t.Fatalf("unexpected submitted totals %+v", orderStub.created)
	}
	if orderStub.created.BillingAddress.State != "TX" {
		t.Fatalf("expected billing address carried over, got %+v", orderStub.created.BillingAddress)
	}
	if orderStub.created.ShippingAddress.State != "TX" {
		t.Fatal("expected shipping address to default to billing")
	}

	if len(store.values) != 0 {
		t.Fatalf("expected session discarded, still stored: %v", store.values)
	}
	_, err = svc.Get(ctx, session.ID)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after submit, got %v", err)
	}
}

func TestExpiredSessionReadsAsNotFound(t *testing.T) {
	svc, _, _, _ := newCheckoutService(t)

	_, err := svc.Get(context.Background(), uuid.NewString())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
