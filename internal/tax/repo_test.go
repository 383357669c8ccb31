package tax

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db/models"
)

func setupTaxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS tax_overrides (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  location_id TEXT,
  pos_instance_id TEXT,
  rate_bps INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_tax_overrides_tenant
  ON tax_overrides (tenant_id)
  WHERE location_id IS NULL AND pos_instance_id IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS ux_tax_overrides_location
  ON tax_overrides (tenant_id, location_id)
  WHERE location_id IS NOT NULL AND pos_instance_id IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS ux_tax_overrides_pos
  ON tax_overrides (tenant_id, pos_instance_id)
  WHERE pos_instance_id IS NOT NULL;`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func mustCreateOverride(t *testing.T, repo *Repository, override *models.TaxOverride) *models.TaxOverride {
	t.Helper()
	override.ID = uuid.New()
	created, err := repo.Create(context.Background(), override)
	require.NoError(t, err)
	return created
}

func TestRepositoryTierLookupsAreDisjoint(t *testing.T) {
	db := setupTaxTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	locationID := uuid.New()
	posID := uuid.New()

	mustCreateOverride(t, repo, &models.TaxOverride{TenantID: tenantID, RateBps: 500})
	mustCreateOverride(t, repo, &models.TaxOverride{TenantID: tenantID, LocationID: &locationID, RateBps: 700})
	mustCreateOverride(t, repo, &models.TaxOverride{TenantID: tenantID, LocationID: &locationID, POSInstanceID: &posID, RateBps: 900})

	tenantRow, err := repo.FindTenantOverride(ctx, tenantID)
	require.NoError(t, err)
	require.NotNil(t, tenantRow)
	assert.Equal(t, 500, tenantRow.RateBps)

	locationRow, err := repo.FindLocationOverride(ctx, tenantID, locationID)
	require.NoError(t, err)
	require.NotNil(t, locationRow)
	assert.Equal(t, 700, locationRow.RateBps)

	posRow, err := repo.FindPOSOverride(ctx, tenantID, posID)
	require.NoError(t, err)
	require.NotNil(t, posRow)
	assert.Equal(t, 900, posRow.RateBps)
}

func TestRepositoryFindReturnsNilWhenAbsent(t *testing.T) {
	db := setupTaxTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row, err := repo.FindTenantOverride(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, row)

	row, err = repo.FindPOSOverride(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestRepositoryDuplicateTierRejected(t *testing.T) {
	db := setupTaxTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	mustCreateOverride(t, repo, &models.TaxOverride{TenantID: tenantID, RateBps: 500})

	_, err := repo.Create(ctx, &models.TaxOverride{ID: uuid.New(), TenantID: tenantID, RateBps: 600})
	require.Error(t, err)
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	db := setupTaxTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	created := mustCreateOverride(t, repo, &models.TaxOverride{TenantID: tenantID, RateBps: 500})

	require.NoError(t, repo.UpdateRate(ctx, created.ID, 650))
	row, err := repo.FindByID(ctx, tenantID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 650, row.RateBps)

	rows, err := repo.List(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, repo.Delete(ctx, tenantID, created.ID))
	row, err = repo.FindByID(ctx, tenantID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, row)
}
