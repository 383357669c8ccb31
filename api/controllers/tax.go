package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novapos/novapos-backend/api/responses"
	"github.com/novapos/novapos-backend/api/validators"
	"github.com/novapos/novapos-backend/internal/tax"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/logger"
)

type setTaxOverrideRequest struct {
	LocationID    *string `json:"location_id,omitempty" validate:"omitempty,uuid"`
	POSInstanceID *string `json:"pos_instance_id,omitempty" validate:"omitempty,uuid"`
	RateBps       int     `json:"rate_bps" validate:"min=0,max=10000"`
}

// SetTaxOverride pins a tax rate at the tier implied by the scope ids.
func SetTaxOverride(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setTaxOverrideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := parseOptionalUUID(payload.LocationID, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		posInstanceID, err := parseOptionalUUID(payload.POSInstanceID, "pos_instance_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		override, err := svc.SetOverride(r.Context(), tax.SetOverrideInput{
			TenantID:      tenantID,
			LocationID:    locationID,
			POSInstanceID: posInstanceID,
			RateBps:       payload.RateBps,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, override)
	}
}

// ListTaxOverrides returns every override configured for the tenant.
func ListTaxOverrides(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		overrides, err := svc.ListOverrides(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, overrides)
	}
}

// DeleteTaxOverride removes one override by id.
func DeleteTaxOverride(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		overrideID, err := validators.ParsePathUUID(chi.URLParam(r, "overrideID"), "override id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOverride(r.Context(), tenantID, overrideID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ResolveTaxRate previews the effective rate for a scope without pricing an order.
func ResolveTaxRate(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		input := tax.ResolveInput{TenantID: tenantID}
		if raw := query.Get("location_id"); raw != "" {
			locationID, err := validators.ParsePathUUID(raw, "location_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.LocationID = &locationID
		}
		if raw := query.Get("pos_instance_id"); raw != "" {
			posInstanceID, err := validators.ParsePathUUID(raw, "pos_instance_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.POSInstanceID = &posInstanceID
		}

		resolution, err := svc.Resolve(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"rate_bps": resolution.RateBps,
			"source":   resolution.Source,
		})
	}
}
