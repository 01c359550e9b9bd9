package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

const orderListJSON = `[{
	"id": "ord-1",
	"orderNumber": "DH-20260115-ABC123",
	"status": "pending",
	"items": [{"name": "2019 Civic", "priceAtOrder": 100, "quantity": 2}]
}]`

func TestListAllOrdersFallsBackToOwnOrdersOn403(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders/all", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": "forbidden", "message": "admin role required"}}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": ` + orderListJSON + `}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Store:      NewMemoryTokenStore("access-1", "refresh-1"),
	})
	if err != nil {
		t.Fatalf("build client: %v", err)
	}

	all, _, err := c.ListAllOrders(context.Background())
	if err != nil {
		t.Fatalf("fallback must not surface the 403: %v", err)
	}
	mine, _, err := c.ListMyOrders(context.Background())
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if !reflect.DeepEqual(all, mine) {
		t.Fatal("fallback listing must equal the caller's own orders")
	}
	if len(all) != 1 || all[0].TotalQuantity != 2 {
		t.Fatalf("unexpected normalized orders %+v", all)
	}
}

func TestListAllOrdersDecodesEnvelopeShape(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"orders": ` + orderListJSON + `}}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	c, err := New(Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Store:      NewMemoryTokenStore("admin-access", "admin-refresh"),
	})
	if err != nil {
		t.Fatalf("build client: %v", err)
	}

	views, _, err := c.ListAllOrders(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(views) != 1 || views[0].OrderNumber != "DH-20260115-ABC123" {
		t.Fatalf("unexpected views %+v", views)
	}
}
