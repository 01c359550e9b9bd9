// Package orderview converts the heterogeneous wire shapes returned by the
// order-read endpoints into one canonical display model. Payload ambiguity is
// resolved once, at decode time; downstream code only ever sees View.
package orderview

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// DeliveryNotAvailable is the sentinel status used when an order has no
// tracking entries yet.
const DeliveryNotAvailable = "not available"

// Item is one canonical order line. Price is a cent amount.
type Item struct {
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// Delivery summarizes the most recent tracking entry.
type Delivery struct {
	Available      bool       `json:"available"`
	Status         string     `json:"status"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// HistoryEntry is one row of the chronological order timeline.
type HistoryEntry struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// View is the canonical per-order shape. Decoding a payload that is already
// in this shape passes it through unchanged.
type View struct {
	ID            string         `json:"id"`
	OrderNumber   string         `json:"order_number"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	Email         string         `json:"email,omitempty"`
	PlacedAt      *time.Time     `json:"placed_at,omitempty"`
	Items         []Item         `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	Subtotal      int            `json:"subtotal"`
	Discount      int            `json:"discount"`
	Shipping      int            `json:"shipping"`
	Tax           int            `json:"tax"`
	Total         int            `json:"total"`
	Delivery      Delivery       `json:"delivery"`
	History       []HistoryEntry `json:"history"`
}

// payloadShape is the closed set of top-level forms the API is known to emit.
type payloadShape int

const (
	shapeArray    payloadShape = iota // bare JSON array of orders
	shapeEnvelope                     // object with an "orders" array
	shapeObject                       // single order object
)

// DecodeList accepts any of the three wire shapes and returns the contained
// orders in canonical form. A single object decodes to a one-element slice.
func DecodeList(data []byte) ([]View, error) {
	shape, err := sniff(data)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	switch shape {
	case shapeArray:
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order list")
		}
	case shapeEnvelope:
		var envelope struct {
			Orders []json.RawMessage `json:"orders"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order envelope")
		}
		raws = envelope.Orders
	case shapeObject:
		raws = []json.RawMessage{json.RawMessage(data)}
	}

	views := make([]View, 0, len(raws))
	for _, raw := range raws {
		view, err := decodeOrder(raw)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// DecodeOne decodes a payload expected to hold exactly one order.
func DecodeOne(data []byte) (*View, error) {
	views, err := DecodeList(data)
	if err != nil {
		return nil, err
	}
	if len(views) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "expected a single order in response")
	}
	return &views[0], nil
}

func sniff(data []byte) (payloadShape, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "empty order payload")
	}
	switch trimmed[0] {
	case '[':
		return shapeArray, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order payload")
		}
		if _, ok := probe["orders"]; ok {
			return shapeEnvelope, nil
		}
		return shapeObject, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "unrecognized order payload")
	}
}

func decodeOrder(raw json.RawMessage) (View, error) {
	if isCanonical(raw) {
		var view View
		if err := json.Unmarshal(raw, &view); err != nil {
			return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order")
		}
		return view, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order")
	}
	return normalize(fields), nil
}

// isCanonical reports whether the order already carries canonical items.
// Canonical items have a flat numeric "price"; raw shapes carry the amount
// under "priceAtOrder" or "unit_price_cents" instead.
func isCanonical(raw json.RawMessage) bool {
	var probe struct {
		Items []struct {
			Price *json.Number `json:"price"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return len(probe.Items) > 0 && probe.Items[0].Price != nil
}

func normalize(fields map[string]json.RawMessage) View {
	items := normalizeItems(fields)
	tracking := normalizeTracking(fields)

	totalQuantity := 0
	for _, item := range items {
		totalQuantity += item.Quantity
	}

	status := pickString(fields, "status")
	paymentStatus := pickString(fields, "paymentStatus", "payment_status")

	view := View{
		ID:            pickString(fields, "id", "_id"),
		OrderNumber:   pickString(fields, "orderNumber", "order_number"),
		Status:        status,
		PaymentStatus: paymentStatus,
		Email:         pickString(fields, "email"),
		PlacedAt:      pickTime(fields, "placedAt", "createdAt", "created_at"),
		Items:         items,
		TotalQuantity: totalQuantity,
		Subtotal:      pickInt(fields, "subTotal", "subtotal", "subtotal_cents"),
		Discount:      pickInt(fields, "discount", "discount_cents"),
		Shipping:      pickInt(fields, "shipping", "shipping_cents"),
		Tax:           pickInt(fields, "tax", "tax_cents"),
		Total:         pickInt(fields, "total", "total_cents"),
		Delivery:      deliverySummary(tracking),
		History:       buildHistory(fields, tracking, status, paymentStatus),
	}
	return view
}

type trackingEntry struct {
	Status         string
	Carrier        string
	TrackingNumber string
	At             *time.Time
}

func normalizeItems(fields map[string]json.RawMessage) []Item {
	raw, ok := firstPresent(fields, "items", "order_items", "products")
	if !ok {
		return []Item{}
	}

	var rawItems []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return []Item{}
	}

	items := make([]Item, 0, len(rawItems))
	for _, entry := range rawItems {
		qty := pickInt(entry, "quantity", "qty")
		if qty == 0 {
			qty = 1
		}
		items = append(items, Item{
			Name:     pickString(entry, "name", "title"),
			SKU:      pickString(entry, "sku"),
			Price:    pickInt(entry, "price", "priceAtOrder", "unit_price_cents"),
			Quantity: qty,
		})
	}
	return items
}

func normalizeTracking(fields map[string]json.RawMessage) []trackingEntry {
	raw, ok := firstPresent(fields, "trackingLogs", "tracking_events", "tracking")
	if !ok {
		return nil
	}

	var rawEntries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rawEntries); err != nil {
		return nil
	}

	entries := make([]trackingEntry, 0, len(rawEntries))
	for _, entry := range rawEntries {
		entries = append(entries, trackingEntry{
			Status:         pickString(entry, "status"),
			Carrier:        pickString(entry, "carrier"),
			TrackingNumber: pickString(entry, "trackingNumber", "tracking_number"),
			At:             pickTime(entry, "createdAt", "created_at", "at"),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i].At, entries[j].At
		if left == nil || right == nil {
			return false
		}
		return left.Before(*right)
	})
	return entries
}

func deliverySummary(tracking []trackingEntry) Delivery {
	if len(tracking) == 0 {
		return Delivery{Available: false, Status: DeliveryNotAvailable}
	}
	latest := tracking[len(tracking)-1]
	return Delivery{
		Available:      true,
		Status:         latest.Status,
		Carrier:        latest.Carrier,
		TrackingNumber: latest.TrackingNumber,
		UpdatedAt:      latest.At,
	}
}

func buildHistory(fields map[string]json.RawMessage, tracking []trackingEntry, status, paymentStatus string) []HistoryEntry {
	history := make([]HistoryEntry, 0, len(tracking)+2)
	for _, entry := range tracking {
		at := time.Time{}
		if entry.At != nil {
			at = *entry.At
		}
		history = append(history, HistoryEntry{Label: entry.Status, At: at})
	}

	if paymentStatus == "paid" {
		at := pickTime(fields, "paidAt", "paid_at")
		history = append(history, HistoryEntry{Label: "payment received", At: derefOrZero(at)})
	}
	if status == "completed" {
		at := pickTime(fields, "completedAt", "completed_at")
		history = append(history, HistoryEntry{Label: "order completed", At: derefOrZero(at)})
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].At.Before(history[j].At)
	})
	return history
}

func derefOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func firstPresent(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := fields[key]; ok && !bytes.Equal(raw, []byte("null")) {
			return raw, true
		}
	}
	return nil, false
}

func pickString(fields map[string]json.RawMessage, keys ...string) string {
	raw, ok := firstPresent(fields, keys...)
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

func pickInt(fields map[string]json.RawMessage, keys ...string) int {
	raw, ok := firstPresent(fields, keys...)
	if !ok {
		return 0
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0
	}
	value, err := number.Int64()
	if err != nil {
		// Some legacy payloads carry float amounts.
		floating, ferr := number.Float64()
		if ferr != nil {
			return 0
		}
		return int(floating)
	}
	return int(value)
}

func pickTime(fields map[string]json.RawMessage, keys ...string) *time.Time {
	raw, ok := firstPresent(fields, keys...)
	if !ok {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
