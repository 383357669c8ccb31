package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db"
	"github.com/novapos/novapos-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  tenant_id TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'cashier',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_users_tenant_email ON users (tenant_id, lower(email));`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func TestRepositoryEmailLookupIsCaseInsensitive(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := repo.Create(ctx, CreateUserDTO{
		TenantID:     tenantID,
		Email:        "Cashier@Example.com",
		PasswordHash: "hash",
		Role:         enums.MemberRoleCashier,
	})
	require.NoError(t, err)
	assert.Equal(t, "cashier@example.com", created.Email)

	found, err := repo.FindByEmail(ctx, tenantID, "CASHIER@example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := repo.FindByEmail(ctx, uuid.New(), "cashier@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryDuplicateEmailWithinTenantRejected(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := repo.Create(ctx, CreateUserDTO{
		TenantID:     tenantID,
		Email:        "manager@example.com",
		PasswordHash: "hash",
		Role:         enums.MemberRoleManager,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateUserDTO{
		TenantID:     tenantID,
		Email:        "Manager@example.com",
		PasswordHash: "hash2",
		Role:         enums.MemberRoleCashier,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "ux_users_tenant_email"))

	// The same email is fine under another tenant.
	_, err = repo.Create(ctx, CreateUserDTO{
		TenantID:     uuid.New(),
		Email:        "manager@example.com",
		PasswordHash: "hash3",
		Role:         enums.MemberRoleManager,
	})
	require.NoError(t, err)
}

func TestRepositorySetActive(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := repo.Create(ctx, CreateUserDTO{
		TenantID:     tenantID,
		Email:        "clerk@example.com",
		PasswordHash: "hash",
		Role:         enums.MemberRoleCashier,
	})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	require.NoError(t, repo.SetActive(ctx, tenantID, created.ID, false))

	found, err := repo.FindByID(ctx, tenantID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsActive)
}
