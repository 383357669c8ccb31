package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS inventory_levels (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  tenant_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_inventory_tenant_location_product
  ON inventory_levels (tenant_id, location_id, product_id);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestAdjustCreatesRowOnFirstReceipt(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID, locationID, productID := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, repo.Adjust(ctx, tenantID, locationID, productID, 10))

	level, err := repo.Get(ctx, tenantID, locationID, productID)
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 10, level.Quantity)
}

func TestAdjustNeverGoesNegative(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID, locationID, productID := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, repo.Adjust(ctx, tenantID, locationID, productID, 5))

	err := repo.Adjust(ctx, tenantID, locationID, productID, -6)
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.NoError(t, repo.Adjust(ctx, tenantID, locationID, productID, -5))
	level, err := repo.Get(ctx, tenantID, locationID, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, level.Quantity)
}

func TestAdjustNegativeOnMissingRowRejected(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	err := repo.Adjust(context.Background(), uuid.New(), uuid.New(), uuid.New(), -1)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestServiceAdjustMapsInsufficientStockToConflict(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	tenantID := uuid.New()
	input := AdjustInput{LocationID: uuid.New(), ProductID: uuid.New(), Delta: -3}

	_, err = svc.Adjust(context.Background(), tenantID, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	input.Delta = 3
	level, err := svc.Adjust(context.Background(), tenantID, input)
	require.NoError(t, err)
	assert.Equal(t, 3, level.Quantity)
}
