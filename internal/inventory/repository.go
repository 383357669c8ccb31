package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db/models"
)

// ErrInsufficientStock is returned when an adjustment would drive the
// on-hand quantity negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository persists per-location stock levels.
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

// Get loads the stock row for (tenant, location, product), or nil when absent.
func (r *Repository) Get(ctx context.Context, tenantID, locationID, productID uuid.UUID) (*models.InventoryLevel, error) {
	var level models.InventoryLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND product_id = ?", tenantID, locationID, productID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// ListByLocation returns all stock rows for one location.
func (r *Repository) ListByLocation(ctx context.Context, tenantID, locationID uuid.UUID) ([]models.InventoryLevel, error) {
	var rows []models.InventoryLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Create inserts a stock row.
func (r *Repository) Create(ctx context.Context, level *models.InventoryLevel) (*models.InventoryLevel, error) {
	if err := r.db.WithContext(ctx).Create(level).Error; err != nil {
		return nil, err
	}
	return level, nil
}

// AdjustTx applies delta inside the caller's transaction so stock moves
// commit or roll back with the order that caused them.
func (r *Repository) AdjustTx(ctx context.Context, tx *gorm.DB, tenantID, locationID, productID uuid.UUID, delta int) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return r.WithTx(tx).Adjust(ctx, tenantID, locationID, productID, delta)
}

// Adjust applies delta to the stock row with a conditional update so the
// quantity can never go negative. Positive deltas on a missing row create it.
func (r *Repository) Adjust(ctx context.Context, tenantID, locationID, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.InventoryLevel{}).
		Where("tenant_id = ? AND location_id = ? AND product_id = ? AND quantity + ? >= 0",
			tenantID, locationID, productID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	existing, err := r.Get(ctx, tenantID, locationID, productID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrInsufficientStock
	}
	if delta < 0 {
		return ErrInsufficientStock
	}
	_, err = r.Create(ctx, &models.InventoryLevel{
		TenantID:   tenantID,
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   delta,
	})
	return err
}
