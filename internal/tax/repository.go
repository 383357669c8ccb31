package tax

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db/models"
)

// Repository persists tax overrides across the three precedence tiers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindPOSOverride returns the POS-scoped override, or nil when absent.
func (r *Repository) FindPOSOverride(ctx context.Context, tenantID, posInstanceID uuid.UUID) (*models.TaxOverride, error) {
	var override models.TaxOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND pos_instance_id = ?", tenantID, posInstanceID).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

// FindLocationOverride returns the location-scoped override, or nil when absent.
func (r *Repository) FindLocationOverride(ctx context.Context, tenantID, locationID uuid.UUID) (*models.TaxOverride, error) {
	var override models.TaxOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND pos_instance_id IS NULL", tenantID, locationID).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

// FindTenantOverride returns the tenant-global override, or nil when absent.
func (r *Repository) FindTenantOverride(ctx context.Context, tenantID uuid.UUID) (*models.TaxOverride, error) {
	var override models.TaxOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id IS NULL AND pos_instance_id IS NULL", tenantID).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

// FindByID loads one override scoped to the tenant.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.TaxOverride, error) {
	var override models.TaxOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

// Create inserts a new override row.
func (r *Repository) Create(ctx context.Context, override *models.TaxOverride) (*models.TaxOverride, error) {
	if err := r.db.WithContext(ctx).Create(override).Error; err != nil {
		return nil, err
	}
	return override, nil
}

// UpdateRate changes the rate on an existing override.
func (r *Repository) UpdateRate(ctx context.Context, id uuid.UUID, rateBps int) error {
	return r.db.WithContext(ctx).
		Model(&models.TaxOverride{}).
		Where("id = ?", id).
		Update("rate_bps", rateBps).Error
}

// List returns all overrides for the tenant, most specific tiers last.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]models.TaxOverride, error) {
	var rows []models.TaxOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Delete removes an override scoped to the tenant.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.TaxOverride{}).Error
}
