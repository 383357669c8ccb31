package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/novapos/novapos-backend/pkg/db"
	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/logger"
)

const maxKeyLen = 255

// Mutation runs the guarded financial write inside a transaction and returns
// the HTTP status code and response payload to memoize.
type Mutation func(tx *gorm.DB) (int, any, error)

// Result is what the guard hands back to the caller: either the fresh
// response or the memoized one from the first submission of the key.
type Result struct {
	Code     int
	Body     json.RawMessage
	Replayed bool
}

type recordStore interface {
	Find(ctx context.Context, tenantID uuid.UUID, key string) (*models.IdempotencyRecord, error)
	InsertTx(tx *gorm.DB, record *models.IdempotencyRecord) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Guard deduplicates mutations keyed by (tenant, idempotency key).
//
// The record row is inserted in the same transaction as the mutation, so the
// unique index serializes concurrent duplicates: the first committer wins and
// every loser's transaction rolls back on the unique violation, after which
// the loser reads the winner's stored response back. Failed mutations never
// insert a record, so a failed attempt can be retried under the same key.
type Guard struct {
	db   txRunner
	repo recordStore
	logg *logger.Logger
}

// NewGuard constructs the idempotency guard.
func NewGuard(db txRunner, repo recordStore, logg *logger.Logger) (*Guard, error) {
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("idempotency repository required")
	}
	return &Guard{db: db, repo: repo, logg: logg}, nil
}

// Execute runs mutation at most once per (tenant, key). Duplicates receive
// the first successful response verbatim.
func (g *Guard) Execute(ctx context.Context, tenantID uuid.UUID, key string, mutation Mutation) (*Result, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	key = strings.TrimSpace(key)
	if key == "" || len(key) > maxKeyLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if mutation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mutation is required")
	}

	if existing, err := g.repo.Find(ctx, tenantID, key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up idempotency record")
	} else if existing != nil {
		return g.replay(ctx, existing), nil
	}

	var fresh Result
	err := g.db.WithTx(ctx, func(tx *gorm.DB) error {
		code, payload, err := mutation(tx)
		if err != nil {
			return err
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding response for memoization")
		}
		record := &models.IdempotencyRecord{
			TenantID:     tenantID,
			Key:          key,
			ResponseCode: code,
			ResponseBody: body,
		}
		if err := g.repo.InsertTx(tx, record); err != nil {
			return err
		}
		fresh = Result{Code: code, Body: body}
		return nil
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_idempotency_tenant_key") {
			// Lost the race: the whole transaction rolled back, read the
			// winner's row.
			winner, findErr := g.repo.Find(ctx, tenantID, key)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reading winning idempotency record")
			}
			if winner != nil {
				return g.replay(ctx, winner), nil
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "idempotency record vanished after conflict")
		}
		return nil, err
	}
	return &fresh, nil
}

func (g *Guard) replay(ctx context.Context, record *models.IdempotencyRecord) *Result {
	if g.logg != nil {
		logCtx := g.logg.WithFields(ctx, map[string]any{
			"idempotency_key": record.Key,
			"first_seen_at":   record.FirstSeenAt,
		})
		g.logg.Info(logCtx, "replaying memoized response")
	}
	return &Result{
		Code:     record.ResponseCode,
		Body:     record.ResponseBody,
		Replayed: true,
	}
}
