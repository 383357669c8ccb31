package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/api/middleware"
	"github.com/novapos/novapos-backend/internal/idempotency"
	"github.com/novapos/novapos-backend/internal/orders"
	"github.com/novapos/novapos-backend/pkg/pagination"
)

type stubOrderService struct {
	result *idempotency.Result
	order  *orders.OrderDTO
	list   *orders.ListResult
	err    error

	lastCreate orders.CreateOrderInput
}

func (s *stubOrderService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*idempotency.Result, error) {
	s.lastCreate = input
	return s.result, s.err
}

func (s *stubOrderService) CreateReturn(ctx context.Context, input orders.CreateReturnInput) (*idempotency.Result, error) {
	return s.result, s.err
}

func (s *stubOrderService) GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*orders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
	return s.list, s.err
}

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithTenantID(req.Context(), uuid.NewString())
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	return req.WithContext(ctx)
}

func TestCreateOrderSuccess(t *testing.T) {
	body := []byte(`{"data":{"id":"` + uuid.NewString() + `","total_minor":2897}}`)
	svc := &stubOrderService{result: &idempotency.Result{Code: http.StatusCreated, Body: body}}
	handler := CreateOrder(svc, nil)

	payload := []byte(`{"currency":"USD","lines":[{"product_id":"` + uuid.NewString() + `","quantity":2}]}`)
	req := authedRequest(t, http.MethodPost, "/api/v1/orders", payload)
	req.Header.Set("Idempotency-Key", "order-abc-1")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := resp.Header().Get("Idempotency-Replayed"); got != "" {
		t.Fatalf("expected no replay header got %q", got)
	}
	if !bytes.Equal(bytes.TrimSpace(resp.Body.Bytes()), body) {
		t.Fatalf("expected raw body passthrough got %s", resp.Body.String())
	}
	if svc.lastCreate.IdempotencyKey != "order-abc-1" {
		t.Fatalf("expected idempotency key forwarded got %q", svc.lastCreate.IdempotencyKey)
	}
	if len(svc.lastCreate.Lines) != 1 || svc.lastCreate.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines %+v", svc.lastCreate.Lines)
	}
}

func TestCreateOrderReplaySetsHeader(t *testing.T) {
	body := []byte(`{"data":{"id":"` + uuid.NewString() + `"}}`)
	svc := &stubOrderService{result: &idempotency.Result{Code: http.StatusCreated, Body: body, Replayed: true}}
	handler := CreateOrder(svc, nil)

	payload := []byte(`{"lines":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`)
	req := authedRequest(t, http.MethodPost, "/api/v1/orders", payload)
	req.Header.Set("Idempotency-Key", "order-abc-1")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := resp.Header().Get("Idempotency-Replayed"); got != "true" {
		t.Fatalf("expected replay header got %q", got)
	}
}

func TestCreateOrderRequiresIdempotencyKey(t *testing.T) {
	svc := &stubOrderService{result: &idempotency.Result{Code: http.StatusCreated, Body: []byte(`{}`)}}
	handler := CreateOrder(svc, nil)

	payload := []byte(`{"lines":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`)
	req := authedRequest(t, http.MethodPost, "/api/v1/orders", payload)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestCreateOrderRejectsEmptyLines(t *testing.T) {
	svc := &stubOrderService{result: &idempotency.Result{Code: http.StatusCreated, Body: []byte(`{}`)}}
	handler := CreateOrder(svc, nil)

	req := authedRequest(t, http.MethodPost, "/api/v1/orders", []byte(`{"lines":[]}`))
	req.Header.Set("Idempotency-Key", "order-abc-2")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateOrderRequiresTenant(t *testing.T) {
	svc := &stubOrderService{result: &idempotency.Result{Code: http.StatusCreated, Body: []byte(`{}`)}}
	handler := CreateOrder(svc, nil)

	payload := []byte(`{"lines":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(payload))
	req.Header.Set("Idempotency-Key", "order-abc-3")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
