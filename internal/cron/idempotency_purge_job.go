package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/novapos/novapos-backend/pkg/logger"
	"gorm.io/gorm"
)

const idempotencyRetentionHours = 48

type IdempotencyPurgeJobParams struct {
	Logger         *logger.Logger
	DB             txRunner
	Repository     idempotencyPurgeRepo
	RetentionHours int
}

type idempotencyPurgeRepo interface {
	DeleteFirstSeenBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

func NewIdempotencyPurgeJob(params IdempotencyPurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("idempotency repository required")
	}
	retention := params.RetentionHours
	if retention <= 0 {
		retention = idempotencyRetentionHours
	}
	return &idempotencyPurgeJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type idempotencyPurgeJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      idempotencyPurgeRepo
	retention int
	now       func() time.Time
}

func (j *idempotencyPurgeJob) Name() string { return "idempotency-purge" }

// Run deletes memoized responses old enough that no client retry window
// can still reference them.
func (j *idempotencyPurgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteFirstSeenBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("idempotency purge: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"retention_hours": j.retention,
		"rows_deleted":    deleted,
	})
	j.logg.Info(logCtx, "idempotency purge complete")
	return nil
}
