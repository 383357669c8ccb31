package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db/models"
)

// Repository persists idempotency records. Rows are insert-only; the unique
// index on (tenant_id, key) is the serialization point for duplicates.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the stored record for (tenant, key), or nil when absent.
func (r *Repository) Find(ctx context.Context, tenantID uuid.UUID, key string) (*models.IdempotencyRecord, error) {
	var record models.IdempotencyRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND key = ?", tenantID, key).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// InsertTx appends the record inside the caller's transaction so it commits
// or rolls back together with the guarded mutation.
func (r *Repository) InsertTx(tx *gorm.DB, record *models.IdempotencyRecord) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(record).Error
}

// DeleteFirstSeenBefore removes memoized responses older than the cutoff.
// A record that old is past any client retry window; dropping it frees the
// (tenant, key) pair for reuse.
func (r *Repository) DeleteFirstSeenBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Where("first_seen_at < ?", cutoff).
		Delete(&models.IdempotencyRecord{})
	return result.RowsAffected, result.Error
}
