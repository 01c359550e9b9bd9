package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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

// Service drives the checkout flow as an explicit state machine over a
// Redis-held session. Forward transitions are guarded here, not left to the
// caller's UI state.
type Service interface {
	Start(ctx context.Context, userID *uuid.UUID, email string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	AddItem(ctx context.Context, id string, productID uuid.UUID, qty int) (*Session, error)
	UpdateItemQty(ctx context.Context, id, sku string, qty int) (*Session, error)
	RemoveItem(ctx context.Context, id, sku string) (*Session, error)
	SetAddresses(ctx context.Context, id string, billing types.Address, shipping *types.Address) (*Session, error)
	SetShippingMethod(ctx context.Context, id, code string) (*Session, error)
	ApplyCoupon(ctx context.Context, id, code string) (*Session, error)
	RemoveCoupon(ctx context.Context, id string) (*Session, error)
	SetPaymentMethod(ctx context.Context, id string, method enums.PaymentMethod) (*Session, error)
	Advance(ctx context.Context, id string) (*Session, error)
	Back(ctx context.Context, id string) (*Session, error)
	QuoteFor(ctx context.Context, id string) (*Quote, error)
	Submit(ctx context.Context, id string) (*orders.OrderDTO, error)
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(id string) string
}

type productCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, subtotalCents int) (*coupons.ValidationResult, error)
}

type shippingRates interface {
	CostFor(ctx context.Context, code string, subtotalCents int) (int, error)
}

type taxCalculator interface {
	CalculateCents(ctx context.Context, state string, taxableCents int) (int, error)
}

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error)
}

// ServiceParams bundles the checkout service dependencies.
type ServiceParams struct {
	Store      sessionStore
	Catalog    productCatalog
	Coupons    couponValidator
	Shipping   shippingRates
	Tax        taxCalculator
	Orders     orderCreator
	SessionTTL time.Duration
}

type service struct {
	store    sessionStore
	catalog  productCatalog
	coupons  couponValidator
	shipping shippingRates
	tax      taxCalculator
	orders   orderCreator
	ttl      time.Duration
	now      func() time.Time
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service is required")
	}
	if params.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &service{
		store:    params.Store,
		catalog:  params.Catalog,
		coupons:  params.Coupons,
		shipping: params.Shipping,
		tax:      params.Tax,
		orders:   params.Orders,
		ttl:      params.SessionTTL,
		now:      time.Now,
	}, nil
}

func (s *service) Start(ctx context.Context, userID *uuid.UUID, email string) (*Session, error) {
	now := s.now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Step:      enums.CheckoutStepCart,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) Get(ctx context.Context, id string) (*Session, error) {
	return s.load(ctx, id)
}

func (s *service) AddItem(ctx context.Context, id string, productID uuid.UUID, qty int) (*Session, error) {
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	listing, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range session.Items {
		if session.Items[i].SKU == listing.SKU {
			session.Items[i].Qty += qty
			merged = true
			break
		}
	}
	if !merged {
		session.Items = append(session.Items, LineItem{
			ProductID:      &listing.ID,
			Name:           listing.Title,
			SKU:            listing.SKU,
			UnitPriceCents: listing.PriceCents,
			Qty:            qty,
		})
	}
	return session, s.save(ctx, session)
}

func (s *service) UpdateItemQty(ctx context.Context, id, sku string, qty int) (*Session, error) {
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range session.Items {
		if session.Items[i].SKU == sku {
			session.Items[i].Qty = qty
			return session, s.save(ctx, session)
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

func (s *service) RemoveItem(ctx context.Context, id, sku string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := session.Items[:0]
	removed := false
	for _, item := range session.Items {
		if item.SKU == sku {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	session.Items = kept
	return session, s.save(ctx, session)
}

func (s *service) SetAddresses(ctx context.Context, id string, billing types.Address, shipping *types.Address) (*Session, error) {
	if field := billing.Validate(); field != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("billing address field %s is required", field))
	}
	normalizedBilling := billing.Normalized()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.BillingAddress = &normalizedBilling
	if shipping != nil {
		if field := shipping.Validate(); field != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping address field %s is required", field))
		}
		normalizedShipping := shipping.Normalized()
		session.ShippingAddress = &normalizedShipping
	} else {
		session.ShippingAddress = nil
	}
	return session, s.save(ctx, session)
}

func (s *service) SetShippingMethod(ctx context.Context, id, code string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Reject unknown method codes up front rather than at quote time.
	if _, err := s.shipping.CostFor(ctx, code, session.SubtotalCents()); err != nil {
		return nil, err
	}
	session.ShippingMethod = strings.ToLower(strings.TrimSpace(code))
	return session, s.save(ctx, session)
}

// ApplyCoupon validates then applies. A rejected coupon leaves the session's
// discount at its prior value.
func (s *service) ApplyCoupon(ctx context.Context, id, code string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.coupons.Validate(ctx, code, session.SubtotalCents())
	if err != nil {
		return nil, err
	}

	session.CouponCode = &result.Code
	session.DiscountCents = result.DiscountCents
	return session, s.save(ctx, session)
}

func (s *service) RemoveCoupon(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.CouponCode = nil
	session.DiscountCents = 0
	return session, s.save(ctx, session)
}

func (s *service) SetPaymentMethod(ctx context.Context, id string, method enums.PaymentMethod) (*Session, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.PaymentMethod = &method
	return session, s.save(ctx, session)
}

// Advance moves the session forward one step when the current step's
// requirements are satisfied.
func (s *service) Advance(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch session.Step {
	case enums.CheckoutStepCart:
		if len(session.Items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
	case enums.CheckoutStepBilling:
		if session.BillingAddress == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "billing address is required")
		}
		if session.ShippingMethod == "" {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipping method is required")
		}
	case enums.CheckoutStepPayment:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already at final step")
	}

	session.Step = session.Step.Next()
	return session, s.save(ctx, session)
}

// Back moves the session one step backward. Backing out of the cart step is
// a no-op.
func (s *service) Back(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := session.Step.Prev()
	if previous == session.Step {
		return session, nil
	}
	session.Step = previous
	return session, s.save(ctx, session)
}

// QuoteFor derives the totals breakdown from the session's current inputs.
func (s *service) QuoteFor(ctx context.Context, id string) (*Quote, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, session)
}

func (s *service) quote(ctx context.Context, session *Session) (*Quote, error) {
	subtotal := session.SubtotalCents()
	discount := session.DiscountCents
	if discount > subtotal {
		discount = subtotal
	}

	shipping := 0
	if session.ShippingMethod != "" {
		cost, err := s.shipping.CostFor(ctx, session.ShippingMethod, subtotal)
		if err != nil {
			return nil, err
		}
		shipping = cost
	}

	tax := 0
	if state := session.taxState(); state != "" {
		amount, err := s.tax.CalculateCents(ctx, state, subtotal-discount)
		if err != nil {
			return nil, err
		}
		tax = amount
	}

	return &Quote{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal - discount + shipping + tax,
	}, nil
}

// Submit posts the order and discards the session on success.
func (s *service) Submit(ctx context.Context, id string) (*orders.OrderDTO, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Step != enums.CheckoutStepPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has not reached the payment step")
	}
	if session.PaymentMethod == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment method is required")
	}
	if session.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	quote, err := s.quote(ctx, session)
	if err != nil {
		return nil, err
	}

	shippingAddress := session.BillingAddress
	if session.ShippingAddress != nil {
		shippingAddress = session.ShippingAddress
	}

	items := make([]orders.CreateOrderItem, 0, len(session.Items))
	for _, item := range session.Items {
		items = append(items, orders.CreateOrderItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
		})
	}

	order, err := s.orders.Create(ctx, orders.CreateOrderInput{
		UserID:          session.UserID,
		Email:           session.Email,
		PaymentMethod:   *session.PaymentMethod,
		ShippingAddress: *shippingAddress,
		BillingAddress:  *session.BillingAddress,
		Items:           items,
		CouponCode:      session.CouponCode,
		SubtotalCents:   quote.SubtotalCents,
		DiscountCents:   quote.DiscountCents,
		ShippingCents:   quote.ShippingCents,
		TaxCents:        quote.TaxCents,
		TotalCents:      quote.TotalCents,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Del(ctx, s.store.CheckoutSessionKey(session.ID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to discard checkout session")
	}
	return order, nil
}

// taxState is the destination state used for tax calculation.
func (s *Session) taxState() string {
	if s.ShippingAddress != nil {
		return s.ShippingAddress.State
	}
	if s.BillingAddress != nil {
		return s.BillingAddress.State
	}
	return ""
}

func (s *service) save(ctx context.Context, session *Session) error {
	session.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode checkout session")
	}
	key := s.store.CheckoutSessionKey(session.ID)
	if err := s.store.Set(ctx, key, string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to persist checkout session")
	}
	return nil
}

func (s *service) load(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id is required")
	}
	raw, err := s.store.Get(ctx, s.store.CheckoutSessionKey(id))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to read checkout session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to decode checkout session")
	}
	return &session, nil
}
