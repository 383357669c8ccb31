package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novapos/novapos-backend/pkg/enums"
)

// Order is a persisted sale (or return, when the amounts are negative).
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	LocationID     *uuid.UUID        `gorm:"column:location_id;type:uuid"`
	POSInstanceID  *uuid.UUID        `gorm:"column:pos_instance_id;type:uuid"`
	CustomerID     *uuid.UUID        `gorm:"column:customer_id;type:uuid"`
	ParentOrderID  *uuid.UUID        `gorm:"column:parent_order_id;type:uuid"`
	Status         enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'created'"`
	Currency       enums.Currency    `gorm:"column:currency;not null;default:'USD'"`
	SubtotalMinor  int64             `gorm:"column:subtotal_minor;not null"`
	TaxMinor       int64             `gorm:"column:tax_minor;not null"`
	TotalMinor     int64             `gorm:"column:total_minor;not null"`
	TaxRateBps     int               `gorm:"column:tax_rate_bps;not null"`
	IdempotencyKey *string           `gorm:"column:idempotency_key"`
	Items          []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentIntent  *PaymentIntent    `gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem is one cart line captured at compute time. UnitPrice keeps
// the catalog's full precision; rounding happens once on the order totals.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
