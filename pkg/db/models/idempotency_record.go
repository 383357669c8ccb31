package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord memoizes the first successful response for a
// (tenant, key) pair. The unique index on that pair is what serializes
// concurrent duplicates: the first insert wins, losers read this row back.
// Rows are read-only after creation.
type IdempotencyRecord struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_idempotency_tenant_key"`
	Key          string          `gorm:"column:key;not null;uniqueIndex:ux_idempotency_tenant_key"`
	ResponseCode int             `gorm:"column:response_code;not null"`
	ResponseBody json.RawMessage `gorm:"column:response_body;type:jsonb;not null"`
	FirstSeenAt  time.Time       `gorm:"column:first_seen_at;autoCreateTime"`
}
