package orders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// Service owns the order lifecycle: creation at checkout submit, buyer reads,
// and admin status/tracking administration.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
	AddTracking(ctx context.Context, id uuid.UUID, input AddTrackingInput) (*OrderDTO, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
}

type couponRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, code string) error
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	DB      *db.Client
	Coupons couponRedeemer
}

type service struct {
	db      *db.Client
	coupons couponRedeemer
	now     func() time.Time
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		db:      params.DB,
		coupons: params.Coupons,
		now:     time.Now,
	}, nil
}

// Create persists the order, its lines, and the opening tracking event in one
// transaction, decrementing stock and burning the coupon redemption with it.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if err := verifyTotals(input); err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(s.now()),
		UserID:          input.UserID,
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		CouponCode:      input.CouponCode,
		SubtotalCents:   input.SubtotalCents,
		DiscountCents:   input.DiscountCents,
		ShippingCents:   input.ShippingCents,
		TaxCents:        input.TaxCents,
		TotalCents:      input.TotalCents,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.UnitPriceCents * item.Qty,
		})
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		for _, item := range input.Items {
			if item.ProductID == nil {
				continue
			}
			affected, err := repo.DecrementStock(ctx, *item.ProductID, item.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("insufficient stock for %s", item.SKU))
			}
		}

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		event := &models.OrderTrackingEvent{
			OrderID: order.ID,
			Status:  enums.OrderStatusPending,
		}
		if err := repo.AppendEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record opening event")
		}

		if input.CouponCode != nil && s.coupons != nil {
			if err := s.coupons.Redeem(ctx, tx, *input.CouponCode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, order.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	repo := NewRepository(s.db.DB())
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

// GetForUser scopes the lookup to the owner; other users see a plain 404.
func (s *service) GetForUser(ctx context.Context, userID, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	repo := NewRepository(s.db.DB())
	rows, total, err := repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &ListResult{
		Orders:     fromModels(rows),
		Pagination: input.Pagination.Describe(total),
	}, nil
}

// UpdateStatus applies a guarded transition and appends a history event in
// the same transaction.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}

		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		now := s.now().UTC()
		order.Status = input.Status
		switch input.Status {
		case enums.OrderStatusShipped:
			order.ShippedAt = &now
		case enums.OrderStatusCompleted:
			order.CompletedAt = &now
		case enums.OrderStatusCancelled:
			order.CancelledAt = &now
		}

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}

		event := &models.OrderTrackingEvent{
			OrderID: order.ID,
			Status:  input.Status,
			Note:    input.Note,
		}
		if err := repo.AppendEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record status event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// AddTracking attaches carrier details as a history event without changing
// the order's status.
func (s *service) AddTracking(ctx context.Context, id uuid.UUID, input AddTrackingInput) (*OrderDTO, error) {
	carrier := strings.TrimSpace(input.Carrier)
	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	if carrier == "" || trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier and tracking_number are required")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		}

		event := &models.OrderTrackingEvent{
			OrderID:        order.ID,
			Status:         order.Status,
			Carrier:        &carrier,
			TrackingNumber: &trackingNumber,
			Note:           input.Note,
		}
		if err := repo.AppendEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record tracking event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// MarkPaid settles the payment once; repeated calls conflict.
func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.PaymentStatus == enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
		}

		now := s.now().UTC()
		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaidAt = &now
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// verifyTotals rejects inputs whose stored amounts disagree with the lines.
func verifyTotals(input CreateOrderInput) error {
	subtotal := 0
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item qty must be positive")
		}
		if item.UnitPriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must be non-negative")
		}
		subtotal += item.UnitPriceCents * item.Qty
	}
	if subtotal != input.SubtotalCents {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "subtotal does not match items")
	}
	expected := input.SubtotalCents - input.DiscountCents + input.ShippingCents + input.TaxCents
	if expected != input.TotalCents {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "total does not match components")
	}
	if input.TotalCents < 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "total must be non-negative")
	}
	return nil
}

func newOrderNumber(now time.Time) string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("DH-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix)))
}
