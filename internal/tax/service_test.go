package tax

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
)

type stubOverrideStore struct {
	pos      map[uuid.UUID]*models.TaxOverride
	location map[uuid.UUID]*models.TaxOverride
	tenant   map[uuid.UUID]*models.TaxOverride
	created  []*models.TaxOverride
}

func newStubOverrideStore() *stubOverrideStore {
	return &stubOverrideStore{
		pos:      map[uuid.UUID]*models.TaxOverride{},
		location: map[uuid.UUID]*models.TaxOverride{},
		tenant:   map[uuid.UUID]*models.TaxOverride{},
	}
}

func (s *stubOverrideStore) FindPOSOverride(_ context.Context, _, posInstanceID uuid.UUID) (*models.TaxOverride, error) {
	return s.pos[posInstanceID], nil
}

func (s *stubOverrideStore) FindLocationOverride(_ context.Context, _, locationID uuid.UUID) (*models.TaxOverride, error) {
	return s.location[locationID], nil
}

func (s *stubOverrideStore) FindTenantOverride(_ context.Context, tenantID uuid.UUID) (*models.TaxOverride, error) {
	return s.tenant[tenantID], nil
}

func (s *stubOverrideStore) FindByID(_ context.Context, _, _ uuid.UUID) (*models.TaxOverride, error) {
	return nil, nil
}

func (s *stubOverrideStore) Create(_ context.Context, override *models.TaxOverride) (*models.TaxOverride, error) {
	override.ID = uuid.New()
	s.created = append(s.created, override)
	return override, nil
}

func (s *stubOverrideStore) UpdateRate(_ context.Context, _ uuid.UUID, _ int) error {
	return nil
}

func (s *stubOverrideStore) List(_ context.Context, _ uuid.UUID) ([]models.TaxOverride, error) {
	return nil, nil
}

func (s *stubOverrideStore) Delete(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func TestResolvePrecedenceChain(t *testing.T) {
	tenantID := uuid.New()
	locationID := uuid.New()
	posID := uuid.New()
	headerRate := 300

	store := newStubOverrideStore()
	store.pos[posID] = &models.TaxOverride{TenantID: tenantID, RateBps: 900}
	store.location[locationID] = &models.TaxOverride{TenantID: tenantID, RateBps: 700}
	store.tenant[tenantID] = &models.TaxOverride{TenantID: tenantID, RateBps: 500}

	svc, err := NewService(store, 250)
	require.NoError(t, err)

	input := ResolveInput{
		TenantID:      tenantID,
		LocationID:    &locationID,
		POSInstanceID: &posID,
		HeaderRateBps: &headerRate,
	}

	res, err := svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 900, res.RateBps)
	assert.Equal(t, SourcePOSInstance, res.Source)

	delete(store.pos, posID)
	res, err = svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 700, res.RateBps)
	assert.Equal(t, SourceLocation, res.Source)

	delete(store.location, locationID)
	res, err = svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 500, res.RateBps)
	assert.Equal(t, SourceTenant, res.Source)

	delete(store.tenant, tenantID)
	res, err = svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 300, res.RateBps)
	assert.Equal(t, SourceHeader, res.Source)

	input.HeaderRateBps = nil
	res, err = svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 250, res.RateBps)
	assert.Equal(t, SourceDefault, res.Source)
}

func TestResolveZeroWhenNothingConfigured(t *testing.T) {
	svc, err := NewService(newStubOverrideStore(), 0)
	require.NoError(t, err)

	res, err := svc.Resolve(context.Background(), ResolveInput{TenantID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 0, res.RateBps)
	assert.Equal(t, SourceZero, res.Source)
}

func TestResolveRejectsMissingTenant(t *testing.T) {
	svc, err := NewService(newStubOverrideStore(), 0)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ResolveInput{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestResolveRejectsOutOfRangeHeaderRate(t *testing.T) {
	svc, err := NewService(newStubOverrideStore(), 0)
	require.NoError(t, err)

	bad := 10001
	_, err = svc.Resolve(context.Background(), ResolveInput{TenantID: uuid.New(), HeaderRateBps: &bad})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetOverrideValidatesRate(t *testing.T) {
	svc, err := NewService(newStubOverrideStore(), 0)
	require.NoError(t, err)

	_, err = svc.SetOverride(context.Background(), SetOverrideInput{TenantID: uuid.New(), RateBps: 12000})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.SetOverride(context.Background(), SetOverrideInput{TenantID: uuid.New(), RateBps: -1})
	require.Error(t, err)
}

func TestSetOverrideRequiresLocationForPOSTier(t *testing.T) {
	svc, err := NewService(newStubOverrideStore(), 0)
	require.NoError(t, err)

	posID := uuid.New()
	_, err = svc.SetOverride(context.Background(), SetOverrideInput{
		TenantID:      uuid.New(),
		POSInstanceID: &posID,
		RateBps:       500,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetOverrideCreatesTenantTier(t *testing.T) {
	store := newStubOverrideStore()
	svc, err := NewService(store, 0)
	require.NoError(t, err)

	tenantID := uuid.New()
	created, err := svc.SetOverride(context.Background(), SetOverrideInput{TenantID: tenantID, RateBps: 825})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 825, created.RateBps)
	assert.Nil(t, created.LocationID)
	assert.Nil(t, created.POSInstanceID)
	require.Len(t, store.created, 1)
}
