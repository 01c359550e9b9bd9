package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

// LineItem is one cart line. UnitPriceCents is a snapshot taken when the
// item was added and is never recomputed from the live listing.
type LineItem struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
}

// Session is the transient checkout state held in Redis between entering
// checkout and order submission. For guests UserID is nil and the addresses
// exist only here, never in the persistent address book.
type Session struct {
	ID              string               `json:"id"`
	UserID          *uuid.UUID           `json:"user_id,omitempty"`
	Email           string               `json:"email"`
	Step            enums.CheckoutStep   `json:"step"`
	Items           []LineItem           `json:"items"`
	BillingAddress  *types.Address       `json:"billing_address,omitempty"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	ShippingMethod  string               `json:"shipping_method,omitempty"`
	CouponCode      *string              `json:"coupon_code,omitempty"`
	DiscountCents   int                  `json:"discount_cents"`
	PaymentMethod   *enums.PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// SubtotalCents sums the line snapshots.
func (s *Session) SubtotalCents() int {
	total := 0
	for _, item := range s.Items {
		total += item.UnitPriceCents * item.Qty
	}
	return total
}

// Quote is the derived totals breakdown for a session. The totals are never
// stored on the session itself; they are recomputed from its inputs so the
// identity total = subtotal - discount + shipping + tax always holds.
type Quote struct {
	SubtotalCents int `json:"subtotal_cents"`
	DiscountCents int `json:"discount_cents"`
	ShippingCents int `json:"shipping_cents"`
	TaxCents      int `json:"tax_cents"`
	TotalCents    int `json:"total_cents"`
}
