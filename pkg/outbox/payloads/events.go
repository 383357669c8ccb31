package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/pkg/enums"
)

// OrderCreatedEvent signals a committed sale with its rounded totals.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID      `json:"order_id"`
	TenantID      uuid.UUID      `json:"tenant_id"`
	LocationID    *uuid.UUID     `json:"location_id,omitempty"`
	POSInstanceID *uuid.UUID     `json:"pos_instance_id,omitempty"`
	Currency      enums.Currency `json:"currency"`
	SubtotalMinor int64          `json:"subtotal_minor"`
	TaxMinor      int64          `json:"tax_minor"`
	TotalMinor    int64          `json:"total_minor"`
	TaxRateBps    int            `json:"tax_rate_bps"`
	LineCount     int            `json:"line_count"`
}

// OrderReturnedEvent is emitted when a return order is created against a sale.
type OrderReturnedEvent struct {
	ReturnOrderID uuid.UUID `json:"return_order_id"`
	ParentOrderID uuid.UUID `json:"parent_order_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	TotalMinor    int64     `json:"total_minor"`
	Reason        string    `json:"reason,omitempty"`
}

// OrderPaidEvent is emitted when an order's payment intent is captured.
type OrderPaidEvent struct {
	OrderID         uuid.UUID `json:"order_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	PaymentIntentID uuid.UUID `json:"payment_intent_id"`
	AmountMinor     int64     `json:"amount_minor"`
	CapturedAt      time.Time `json:"captured_at"`
}

// PaymentTransitionEvent carries one edge of the payment state machine.
// The same shape backs every transition event type.
type PaymentTransitionEvent struct {
	PaymentIntentID uuid.UUID          `json:"payment_intent_id"`
	OrderID         uuid.UUID          `json:"order_id"`
	TenantID        uuid.UUID          `json:"tenant_id"`
	FromState       enums.PaymentState `json:"from_state"`
	ToState         enums.PaymentState `json:"to_state"`
	AmountMinor     int64              `json:"amount_minor"`
	Reason          string             `json:"reason,omitempty"`
	TransitionedAt  time.Time          `json:"transitioned_at"`
}
