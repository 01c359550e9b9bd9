package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	internalorders "github.com/mateoreyes/drivehub-backend/internal/orders"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

type stubOrdersService struct {
	order *internalorders.OrderDTO
	list  *internalorders.ListResult
	err   error

	gotStatus   *internalorders.UpdateStatusInput
	gotTracking *internalorders.AddTrackingInput
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*internalorders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*internalorders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) List(ctx context.Context, input internalorders.ListInput) (*internalorders.ListResult, error) {
	return s.list, s.err
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, input internalorders.UpdateStatusInput) (*internalorders.OrderDTO, error) {
	s.gotStatus = &input
	return s.order, s.err
}

func (s *stubOrdersService) AddTracking(ctx context.Context, id uuid.UUID, input internalorders.AddTrackingInput) (*internalorders.OrderDTO, error) {
	s.gotTracking = &input
	return s.order, s.err
}

func (s *stubOrdersService) MarkPaid(ctx context.Context, id uuid.UUID) (*internalorders.OrderDTO, error) {
	return s.order, s.err
}

func requestWithOrderID(method, target, orderID string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestAdminOrderUpdateStatusSuccess(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{order: &internalorders.OrderDTO{ID: orderID, Status: enums.OrderStatusProcessing}}
	handler := AdminOrderUpdateStatus(svc, nil)

	req := requestWithOrderID(http.MethodPut, "/api/orders/"+orderID.String()+"/status", orderID.String(), []byte(`{"status":"processing"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotStatus == nil || svc.gotStatus.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected service to receive processing status, got %+v", svc.gotStatus)
	}
}

func TestAdminOrderUpdateStatusRejectsUnknownValue(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{}
	handler := AdminOrderUpdateStatus(svc, nil)

	req := requestWithOrderID(http.MethodPut, "/api/orders/"+orderID.String()+"/status", orderID.String(), []byte(`{"status":"teleported"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.gotStatus != nil {
		t.Fatalf("service should not be called for invalid status")
	}
}

func TestAdminOrderUpdateStatusSurfacesTransitionConflict(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition")}
	handler := AdminOrderUpdateStatus(svc, nil)

	req := requestWithOrderID(http.MethodPut, "/api/orders/"+orderID.String()+"/status", orderID.String(), []byte(`{"status":"shipped"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", payload.Error.Code)
	}
}

func TestAdminOrderAddTrackingRequiresCarrier(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{}
	handler := AdminOrderAddTracking(svc, nil)

	req := requestWithOrderID(http.MethodPost, "/api/orders/"+orderID.String()+"/tracking", orderID.String(), []byte(`{"tracking_number":"1Z999"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.gotTracking != nil {
		t.Fatalf("service should not be called without carrier")
	}
}

func TestAdminOrderMarkPaidInvalidID(t *testing.T) {
	handler := AdminOrderMarkPaid(&stubOrdersService{}, nil)

	req := requestWithOrderID(http.MethodPost, "/api/orders/not-a-uuid/paid", "not-a-uuid", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
