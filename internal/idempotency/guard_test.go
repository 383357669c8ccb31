package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupGuardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS idempotency_records (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  tenant_id TEXT NOT NULL,
  key TEXT NOT NULL,
  response_code INTEGER NOT NULL,
  response_body TEXT NOT NULL,
  first_seen_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_idempotency_tenant_key ON idempotency_records (tenant_id, key);
CREATE TABLE IF NOT EXISTS guarded_rows (
  id TEXT PRIMARY KEY,
  note TEXT NOT NULL
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestGuard(t *testing.T, db *gorm.DB) *Guard {
	t.Helper()
	guard, err := NewGuard(gormTxRunner{db: db}, NewRepository(db), nil)
	require.NoError(t, err)
	return guard
}

func TestGuardExecutesMutationOnce(t *testing.T) {
	db := setupGuardTestDB(t)
	guard := newTestGuard(t, db)
	tenantID := uuid.New()

	calls := 0
	mutation := func(tx *gorm.DB) (int, any, error) {
		calls++
		if err := tx.Exec("INSERT INTO guarded_rows (id, note) VALUES (?, ?)", uuid.NewString(), "sale").Error; err != nil {
			return 0, nil, err
		}
		return 201, map[string]string{"status": "created"}, nil
	}

	first, err := guard.Execute(context.Background(), tenantID, "key-1", mutation)
	require.NoError(t, err)
	assert.Equal(t, 201, first.Code)
	assert.False(t, first.Replayed)

	second, err := guard.Execute(context.Background(), tenantID, "key-1", mutation)
	require.NoError(t, err)
	assert.Equal(t, 201, second.Code)
	assert.True(t, second.Replayed)
	assert.JSONEq(t, string(first.Body), string(second.Body))

	assert.Equal(t, 1, calls)

	var rows int64
	require.NoError(t, db.Table("guarded_rows").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestGuardScopesKeysByTenant(t *testing.T) {
	db := setupGuardTestDB(t)
	guard := newTestGuard(t, db)

	mutation := func(tx *gorm.DB) (int, any, error) {
		return 201, map[string]string{"status": "created"}, nil
	}

	first, err := guard.Execute(context.Background(), uuid.New(), "shared-key", mutation)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	other, err := guard.Execute(context.Background(), uuid.New(), "shared-key", mutation)
	require.NoError(t, err)
	assert.False(t, other.Replayed)
}

func TestGuardDoesNotMemoizeFailures(t *testing.T) {
	db := setupGuardTestDB(t)
	guard := newTestGuard(t, db)
	tenantID := uuid.New()

	boom := errors.New("compute failed")
	_, err := guard.Execute(context.Background(), tenantID, "key-1", func(tx *gorm.DB) (int, any, error) {
		if err := tx.Exec("INSERT INTO guarded_rows (id, note) VALUES (?, ?)", uuid.NewString(), "doomed").Error; err != nil {
			return 0, nil, err
		}
		return 0, nil, boom
	})
	require.ErrorIs(t, err, boom)

	var rows int64
	require.NoError(t, db.Table("guarded_rows").Count(&rows).Error)
	assert.Equal(t, int64(0), rows)

	result, err := guard.Execute(context.Background(), tenantID, "key-1", func(tx *gorm.DB) (int, any, error) {
		return 201, map[string]string{"status": "created"}, nil
	})
	require.NoError(t, err)
	assert.False(t, result.Replayed)
}

func TestGuardRejectsMissingKey(t *testing.T) {
	db := setupGuardTestDB(t)
	guard := newTestGuard(t, db)

	_, err := guard.Execute(context.Background(), uuid.New(), "   ", func(tx *gorm.DB) (int, any, error) {
		return 200, nil, nil
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

type racingStore struct {
	winner   *models.IdempotencyRecord
	findSeen int
}

func (s *racingStore) Find(_ context.Context, _ uuid.UUID, _ string) (*models.IdempotencyRecord, error) {
	s.findSeen++
	if s.findSeen == 1 {
		// The winner has not committed yet when the loser first checks.
		return nil, nil
	}
	return s.winner, nil
}

func (s *racingStore) InsertTx(_ *gorm.DB, _ *models.IdempotencyRecord) error {
	return errors.New("UNIQUE constraint failed: idempotency_records.tenant_id, idempotency_records.key")
}

type noopTxRunner struct{}

func (noopTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func TestGuardLoserReadsWinnersResponse(t *testing.T) {
	body := json.RawMessage(`{"status":"created","order_id":"abc"}`)
	store := &racingStore{
		winner: &models.IdempotencyRecord{
			ResponseCode: 201,
			ResponseBody: body,
		},
	}
	guard, err := NewGuard(noopTxRunner{}, store, nil)
	require.NoError(t, err)

	result, err := guard.Execute(context.Background(), uuid.New(), "key-1", func(tx *gorm.DB) (int, any, error) {
		return 201, map[string]string{"status": "created", "order_id": "lost"}, nil
	})
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, 201, result.Code)
	assert.JSONEq(t, string(body), string(result.Body))
}

func TestRepositoryDeleteFirstSeenBefore(t *testing.T) {
	db := setupGuardTestDB(t)
	repo := NewRepository(db)

	tenantID := uuid.New()
	stale := models.IdempotencyRecord{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Key:          "stale",
		ResponseCode: 201,
		ResponseBody: json.RawMessage(`{}`),
		FirstSeenAt:  time.Now().UTC().Add(-72 * time.Hour),
	}
	fresh := models.IdempotencyRecord{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Key:          "fresh",
		ResponseCode: 201,
		ResponseBody: json.RawMessage(`{}`),
		FirstSeenAt:  time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := repo.InsertTx(tx, &stale); err != nil {
			return err
		}
		return repo.InsertTx(tx, &fresh)
	}))

	cutoff := time.Now().UTC().Add(-48 * time.Hour)
	deleted, err := repo.DeleteFirstSeenBefore(context.Background(), nil, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.Find(context.Background(), tenantID, "fresh")
	require.NoError(t, err)
	require.NotNil(t, remaining)

	gone, err := repo.Find(context.Background(), tenantID, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
