package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/api/responses"
	"github.com/novapos/novapos-backend/api/validators"
	"github.com/novapos/novapos-backend/internal/idempotency"
	"github.com/novapos/novapos-backend/internal/orders"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/logger"
	"github.com/novapos/novapos-backend/pkg/pagination"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotency-Replayed"
)

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	LocationID    *string            `json:"location_id,omitempty" validate:"omitempty,uuid"`
	POSInstanceID *string            `json:"pos_instance_id,omitempty" validate:"omitempty,uuid"`
	CustomerID    *string            `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	Currency      string             `json:"currency,omitempty"`
	TaxRateBps    *int               `json:"tax_rate_bps,omitempty" validate:"omitempty,min=0,max=10000"`
	Lines         []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type createReturnRequest struct {
	Reason string             `json:"reason,omitempty"`
	Lines  []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func requireIdempotencyKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required")
	}
	if len(key) > 255 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long")
	}
	return key, nil
}

func parseOptionalUUID(raw *string, name string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a UUID")
	}
	return &id, nil
}

func toLineInputs(lines []orderLineRequest) ([]orders.LineInput, error) {
	result := make([]orders.LineInput, 0, len(lines))
	for _, line := range lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id must be a UUID")
		}
		result = append(result, orders.LineInput{ProductID: productID, Quantity: line.Quantity})
	}
	return result, nil
}

func writeGuardResult(w http.ResponseWriter, result *idempotency.Result) {
	if result.Replayed {
		w.Header().Set(replayedHeader, "true")
	}
	responses.WriteRaw(w, result.Code, result.Body)
}

// CreateOrder prices and persists a sale under an idempotency key.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key, err := requireIdempotencyKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
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
		customerID, err := parseOptionalUUID(payload.CustomerID, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := toLineInputs(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), orders.CreateOrderInput{
			TenantID:       tenantID,
			LocationID:     locationID,
			POSInstanceID:  posInstanceID,
			CustomerID:     customerID,
			HeaderRateBps:  payload.TaxRateBps,
			Currency:       payload.Currency,
			IdempotencyKey: key,
			Lines:          lines,
			Actor:          actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeGuardResult(w, result)
	}
}

// CreateReturn reverses lines from a paid order under an idempotency key.
func CreateReturn(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key, err := requireIdempotencyKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := toLineInputs(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateReturn(r.Context(), orders.CreateReturnInput{
			TenantID:       tenantID,
			ParentOrderID:  orderID,
			Reason:         strings.TrimSpace(payload.Reason),
			IdempotencyKey: key,
			Lines:          lines,
			Actor:          actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeGuardResult(w, result)
	}
}

// GetOrder returns one order with its lines and payment summary.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), tenantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns one cursor page of the tenant's orders.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), tenantID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
