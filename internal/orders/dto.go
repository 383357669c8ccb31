package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novapos/novapos-backend/pkg/db/models"
	"github.com/novapos/novapos-backend/pkg/enums"
)

// OrderDTO is the API shape of an order. Monetary amounts are minor units.
type OrderDTO struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	LocationID    *uuid.UUID         `json:"location_id,omitempty"`
	POSInstanceID *uuid.UUID         `json:"pos_instance_id,omitempty"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	ParentOrderID *uuid.UUID         `json:"parent_order_id,omitempty"`
	Status        enums.OrderStatus  `json:"status"`
	Currency      enums.Currency     `json:"currency"`
	SubtotalMinor int64              `json:"subtotal_minor"`
	TaxMinor      int64              `json:"tax_minor"`
	TotalMinor    int64              `json:"total_minor"`
	TaxRateBps    int                `json:"tax_rate_bps"`
	TaxSource     string             `json:"tax_source,omitempty"`
	Lines         []OrderLineDTO     `json:"lines"`
	Payment       *PaymentSummaryDTO `json:"payment,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// OrderLineDTO is one priced cart line.
type OrderLineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PaymentSummaryDTO is the payment intent as seen from the order.
type PaymentSummaryDTO struct {
	ID          uuid.UUID          `json:"id"`
	State       enums.PaymentState `json:"state"`
	AmountMinor int64              `json:"amount_minor"`
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:            order.ID,
		TenantID:      order.TenantID,
		LocationID:    order.LocationID,
		POSInstanceID: order.POSInstanceID,
		CustomerID:    order.CustomerID,
		ParentOrderID: order.ParentOrderID,
		Status:        order.Status,
		Currency:      order.Currency,
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		TotalMinor:    order.TotalMinor,
		TaxRateBps:    order.TaxRateBps,
		Lines:         make([]OrderLineDTO, 0, len(order.Items)),
		CreatedAt:     order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if order.PaymentIntent != nil {
		dto.Payment = &PaymentSummaryDTO{
			ID:          order.PaymentIntent.ID,
			State:       order.PaymentIntent.State,
			AmountMinor: order.PaymentIntent.AmountMinor,
		}
	}
	return dto
}
