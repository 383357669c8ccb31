package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/pkg/enums"
)

// PaymentIntent tracks payment progress for an order. State changes only
// through the transition table in internal/payments.
type PaymentIntent struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;index"`
	OrderID      uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	State        enums.PaymentState `gorm:"column:state;type:payment_state;not null;default:'created'"`
	AmountMinor  int64              `gorm:"column:amount_minor;not null"`
	Currency     enums.Currency     `gorm:"column:currency;not null;default:'USD'"`
	LastReason   *string            `gorm:"column:last_reason"`
	AuthorizedAt *time.Time         `gorm:"column:authorized_at"`
	CapturedAt   *time.Time         `gorm:"column:captured_at"`
	ClosedAt     *time.Time         `gorm:"column:closed_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
