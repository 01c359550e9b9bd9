package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	"github.com/mateoreyes/drivehub-backend/pkg/pagination"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

// OrderItemDTO is the read shape of one order line.
type OrderItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	TotalCents     int        `json:"total_cents"`
}

// TrackingEventDTO is one entry of the order's append-only history.
type TrackingEventDTO struct {
	ID             uuid.UUID         `json:"id"`
	Status         enums.OrderStatus `json:"status"`
	Carrier        *string           `json:"carrier,omitempty"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
	Note           *string           `json:"note,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// OrderDTO is the full read shape of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          *uuid.UUID          `json:"user_id,omitempty"`
	Email           string              `json:"email"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	ShippingAddress types.Address       `json:"shipping_address"`
	BillingAddress  types.Address       `json:"billing_address"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	SubtotalCents   int                 `json:"subtotal_cents"`
	DiscountCents   int                 `json:"discount_cents"`
	ShippingCents   int                 `json:"shipping_cents"`
	TaxCents        int                 `json:"tax_cents"`
	TotalCents      int                 `json:"total_cents"`
	Items           []OrderItemDTO      `json:"items"`
	TrackingEvents  []TrackingEventDTO  `json:"tracking_events"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CreateOrderItem is one line of a new order.
type CreateOrderItem struct {
	ProductID      *uuid.UUID
	Name           string
	SKU            string
	UnitPriceCents int
	Qty            int
}

// CreateOrderInput carries everything the checkout flow settled on.
type CreateOrderInput struct {
	UserID          *uuid.UUID
	Email           string
	PaymentMethod   enums.PaymentMethod
	ShippingAddress types.Address
	BillingAddress  types.Address
	CouponCode      *string
	Items           []CreateOrderItem
	SubtotalCents   int
	DiscountCents   int
	ShippingCents   int
	TaxCents        int
	TotalCents      int
}

// ListInput pages a user's (or the whole store's) orders.
type ListInput struct {
	UserID     *uuid.UUID
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// ListResult is one page of orders plus the pagination block.
type ListResult struct {
	Orders     []OrderDTO       `json:"orders"`
	Pagination types.Pagination `json:"pagination"`
}

// UpdateStatusInput is the admin payload for a status transition.
type UpdateStatusInput struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
	Note   *string           `json:"note,omitempty"`
}

// AddTrackingInput attaches carrier details to an order.
type AddTrackingInput struct {
	Carrier        string  `json:"carrier" validate:"required"`
	TrackingNumber string  `json:"tracking_number" validate:"required"`
	Note           *string `json:"note,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents,
		})
	}

	events := make([]TrackingEventDTO, 0, len(o.TrackingEvents))
	for _, event := range o.TrackingEvents {
		events = append(events, TrackingEventDTO{
			ID:             event.ID,
			Status:         event.Status,
			Carrier:        event.Carrier,
			TrackingNumber: event.TrackingNumber,
			Note:           event.Note,
			CreatedAt:      event.CreatedAt,
		})
	}

	return &OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Email:           o.Email,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		CouponCode:      o.CouponCode,
		SubtotalCents:   o.SubtotalCents,
		DiscountCents:   o.DiscountCents,
		ShippingCents:   o.ShippingCents,
		TaxCents:        o.TaxCents,
		TotalCents:      o.TotalCents,
		Items:           items,
		TrackingEvents:  events,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		CompletedAt:     o.CompletedAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
