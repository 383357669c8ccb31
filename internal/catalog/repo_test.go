package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db/models"
	"github.com/novapos/novapos-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_products_tenant_sku ON products (tenant_id, sku);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func mustCreateProduct(t *testing.T, repo *Repository, tenantID uuid.UUID, sku string, price string, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       sku,
		Name:      fmt.Sprintf("Product %s", sku),
		UnitPrice: decimal.RequireFromString(price),
		IsActive:  active,
	}
	created, err := repo.Create(context.Background(), product)
	require.NoError(t, err)
	return created
}

func TestRepositoryFindActiveByIDsFiltersInactive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	active := mustCreateProduct(t, repo, tenantID, "sku-1", "19.999", true)
	inactive := mustCreateProduct(t, repo, tenantID, "sku-2", "5.00", false)
	other := mustCreateProduct(t, repo, uuid.New(), "sku-3", "7.00", true)

	found, err := repo.FindActiveByIDs(ctx, tenantID, []uuid.UUID{active.ID, inactive.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)

	got, ok := found[active.ID]
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("19.999").Equal(got.UnitPrice))
}

func TestRepositoryDuplicateSKURejected(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()

	mustCreateProduct(t, repo, tenantID, "sku-1", "10.00", true)
	_, err := repo.Create(context.Background(), &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       "sku-1",
		Name:      "Duplicate",
		UnitPrice: decimal.RequireFromString("11.00"),
	})
	require.Error(t, err)
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		product := &models.Product{
			ID:        uuid.New(),
			TenantID:  tenantID,
			SKU:       fmt.Sprintf("sku-%d", i),
			Name:      fmt.Sprintf("Product %d", i),
			UnitPrice: decimal.RequireFromString("1.00"),
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		_, err := repo.Create(ctx, product)
		require.NoError(t, err)
	}

	page, hasMore, err := repo.List(ctx, tenantID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page, 3)
	assert.True(t, hasMore)

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: page[len(page)-1].CreatedAt,
		ID:        page[len(page)-1].ID,
	})
	rest, hasMore, err := repo.List(ctx, tenantID, pagination.Params{Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.False(t, hasMore)
}
