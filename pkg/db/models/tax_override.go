package models

import (
	"time"

	"github.com/google/uuid"
)

// TaxOverride pins a tax rate at tenant, location, or POS-instance scope.
// Partial unique indexes guarantee at most one row per tier, so resolution
// can never tie. Rows are admin-managed and never auto-deleted.
type TaxOverride struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	LocationID    *uuid.UUID `gorm:"column:location_id;type:uuid"`
	POSInstanceID *uuid.UUID `gorm:"column:pos_instance_id;type:uuid"`
	RateBps       int        `gorm:"column:rate_bps;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
