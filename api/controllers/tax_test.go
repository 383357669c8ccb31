package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/internal/tax"
	"github.com/novapos/novapos-backend/pkg/db/models"
)

type stubTaxService struct {
	resolution tax.Resolution
	override   *models.TaxOverride
	overrides  []models.TaxOverride
	err        error

	lastResolve tax.ResolveInput
}

func (s *stubTaxService) Resolve(ctx context.Context, input tax.ResolveInput) (tax.Resolution, error) {
	s.lastResolve = input
	return s.resolution, s.err
}

func (s *stubTaxService) SetOverride(ctx context.Context, input tax.SetOverrideInput) (*models.TaxOverride, error) {
	return s.override, s.err
}

func (s *stubTaxService) ListOverrides(ctx context.Context, tenantID uuid.UUID) ([]models.TaxOverride, error) {
	return s.overrides, s.err
}

func (s *stubTaxService) DeleteOverride(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.err
}

func TestResolveTaxRateSuccess(t *testing.T) {
	svc := &stubTaxService{resolution: tax.Resolution{RateBps: 875, Source: tax.SourceLocation}}
	handler := ResolveTaxRate(svc, nil)

	locationID := uuid.New()
	req := authedRequest(t, http.MethodGet, "/api/v1/tax/resolve?location_id="+locationID.String(), nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			RateBps int    `json:"rate_bps"`
			Source  string `json:"source"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RateBps != 875 {
		t.Fatalf("expected rate 875 got %d", envelope.Data.RateBps)
	}
	if envelope.Data.Source != string(tax.SourceLocation) {
		t.Fatalf("expected source location got %s", envelope.Data.Source)
	}
	if svc.lastResolve.LocationID == nil || *svc.lastResolve.LocationID != locationID {
		t.Fatalf("expected location forwarded got %+v", svc.lastResolve.LocationID)
	}
}

func TestResolveTaxRateRejectsBadScope(t *testing.T) {
	svc := &stubTaxService{resolution: tax.Resolution{RateBps: 0, Source: tax.SourceZero}}
	handler := ResolveTaxRate(svc, nil)

	req := authedRequest(t, http.MethodGet, "/api/v1/tax/resolve?location_id=not-a-uuid", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetTaxOverrideRejectsRateAboveCap(t *testing.T) {
	svc := &stubTaxService{override: &models.TaxOverride{ID: uuid.New()}}
	handler := SetTaxOverride(svc, nil)

	req := authedRequest(t, http.MethodPut, "/api/v1/tax/overrides", []byte(`{"rate_bps":10001}`))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetTaxOverrideSuccess(t *testing.T) {
	override := &models.TaxOverride{ID: uuid.New(), RateBps: 950}
	svc := &stubTaxService{override: override}
	handler := SetTaxOverride(svc, nil)

	req := authedRequest(t, http.MethodPut, "/api/v1/tax/overrides", []byte(`{"rate_bps":950}`))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
