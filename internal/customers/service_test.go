package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/pagination"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  tenant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newCustomersService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(setupCustomersTestDB(t)))
	require.NoError(t, err)
	return svc
}

func TestCreateCustomerRequiresName(t *testing.T) {
	svc := newCustomersService(t)

	_, err := svc.CreateCustomer(context.Background(), uuid.New(), CreateCustomerInput{Name: "  "})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCustomerLifecycle(t *testing.T) {
	svc := newCustomersService(t)
	tenantID := uuid.New()

	email := "ada@example.com"
	created, err := svc.CreateCustomer(context.Background(), tenantID, CreateCustomerInput{
		Name:  " Ada Lovelace ",
		Email: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", created.Name)

	newName := "Ada King"
	updated, err := svc.UpdateCustomer(context.Background(), tenantID, created.ID, UpdateCustomerInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)

	got, err := svc.GetCustomer(context.Background(), tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", got.Name)

	require.NoError(t, svc.DeleteCustomer(context.Background(), tenantID, created.ID))
	_, err = svc.GetCustomer(context.Background(), tenantID, created.ID)
	require.Error(t, err)
}

func TestCustomerTenantIsolation(t *testing.T) {
	svc := newCustomersService(t)

	created, err := svc.CreateCustomer(context.Background(), uuid.New(), CreateCustomerInput{Name: "Ada"})
	require.NoError(t, err)

	_, err = svc.GetCustomer(context.Background(), uuid.New(), created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListCustomersPaginates(t *testing.T) {
	svc := newCustomersService(t)
	tenantID := uuid.New()

	for i := 0; i < 4; i++ {
		_, err := svc.CreateCustomer(context.Background(), tenantID, CreateCustomerInput{
			Name: fmt.Sprintf("Customer %d", i),
		})
		require.NoError(t, err)
	}

	page, err := svc.ListCustomers(context.Background(), tenantID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Customers, 3)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListCustomers(context.Background(), tenantID, pagination.Params{Limit: 3, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Customers, 1)
	assert.Empty(t, rest.NextCursor)
}
