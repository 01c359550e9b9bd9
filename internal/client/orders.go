package client

import (
	"context"
	"net/http"

	"github.com/mateoreyes/drivehub-backend/internal/orders/orderview"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

// ListMyOrders returns the caller's own orders in canonical form, along with
// the pagination block when the listing is paged.
func (c *Client) ListMyOrders(ctx context.Context) ([]orderview.View, *types.Pagination, error) {
	data, page, err := c.doRaw(ctx, http.MethodGet, "/api/orders", nil)
	if err != nil {
		return nil, nil, err
	}
	views, err := orderview.DecodeList(data)
	if err != nil {
		return nil, nil, err
	}
	return views, page, nil
}

// ListAllOrders returns every order. When the caller lacks the admin role the
// 403 is swallowed and the listing silently narrows to the caller's own
// orders, so a regular user landing on the order list never sees an error.
func (c *Client) ListAllOrders(ctx context.Context) ([]orderview.View, *types.Pagination, error) {
	data, page, err := c.doRaw(ctx, http.MethodGet, "/api/orders/all", nil)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeForbidden {
			return c.ListMyOrders(ctx)
		}
		return nil, nil, err
	}
	views, err := orderview.DecodeList(data)
	if err != nil {
		return nil, nil, err
	}
	return views, page, nil
}

// GetOrder fetches one order. Missing orders come back as a typed not-found
// error; use IsNotFound to branch on it.
func (c *Client) GetOrder(ctx context.Context, id string) (*orderview.View, error) {
	data, _, err := c.doRaw(ctx, http.MethodGet, "/api/orders/"+id, nil)
	if err != nil {
		return nil, err
	}
	return orderview.DecodeOne(data)
}

// UpdateOrderStatus transitions an order's status. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status, note string) (*orderview.View, error) {
	payload := map[string]string{"status": status}
	if note != "" {
		payload["note"] = note
	}
	data, _, err := c.doRaw(ctx, http.MethodPut, "/api/orders/"+id+"/status", payload)
	if err != nil {
		return nil, err
	}
	return orderview.DecodeOne(data)
}

// AddOrderTracking attaches a carrier and tracking number. Admin only.
func (c *Client) AddOrderTracking(ctx context.Context, id, carrier, trackingNumber string) (*orderview.View, error) {
	data, _, err := c.doRaw(ctx, http.MethodPost, "/api/orders/"+id+"/tracking", map[string]string{
		"carrier":         carrier,
		"tracking_number": trackingNumber,
	})
	if err != nil {
		return nil, err
	}
	return orderview.DecodeOne(data)
}
