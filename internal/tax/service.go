package tax

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/pkg/db"
	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
)

// MaxRateBps caps stored rates at 100%.
const MaxRateBps = 10000

// RateSource identifies which precedence tier produced a resolved rate.
type RateSource string

const (
	SourcePOSInstance RateSource = "pos_instance"
	SourceLocation    RateSource = "location"
	SourceTenant      RateSource = "tenant"
	SourceHeader      RateSource = "header"
	SourceDefault     RateSource = "default"
	SourceZero        RateSource = "zero"
)

// ResolveInput carries the scope of one rate lookup.
type ResolveInput struct {
	TenantID      uuid.UUID
	LocationID    *uuid.UUID
	POSInstanceID *uuid.UUID
	HeaderRateBps *int
}

// Resolution is the single rate the precedence chain produced.
type Resolution struct {
	RateBps int
	Source  RateSource
}

// SetOverrideInput pins a rate at one tier; the tier follows from which
// scope IDs are present.
type SetOverrideInput struct {
	TenantID      uuid.UUID
	LocationID    *uuid.UUID
	POSInstanceID *uuid.UUID
	RateBps       int
}

type overrideStore interface {
	FindPOSOverride(ctx context.Context, tenantID, posInstanceID uuid.UUID) (*models.TaxOverride, error)
	FindLocationOverride(ctx context.Context, tenantID, locationID uuid.UUID) (*models.TaxOverride, error)
	FindTenantOverride(ctx context.Context, tenantID uuid.UUID) (*models.TaxOverride, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.TaxOverride, error)
	Create(ctx context.Context, override *models.TaxOverride) (*models.TaxOverride, error)
	UpdateRate(ctx context.Context, id uuid.UUID, rateBps int) error
	List(ctx context.Context, tenantID uuid.UUID) ([]models.TaxOverride, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Service resolves effective tax rates and manages admin overrides.
type Service interface {
	Resolve(ctx context.Context, input ResolveInput) (Resolution, error)
	SetOverride(ctx context.Context, input SetOverrideInput) (*models.TaxOverride, error)
	ListOverrides(ctx context.Context, tenantID uuid.UUID) ([]models.TaxOverride, error)
	DeleteOverride(ctx context.Context, tenantID, id uuid.UUID) error
}

type service struct {
	repo           overrideStore
	defaultRateBps int
}

// NewService constructs the tax service with the configured fallback rate.
func NewService(repo overrideStore, defaultRateBps int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax override repository required")
	}
	if defaultRateBps < 0 || defaultRateBps > MaxRateBps {
		return nil, fmt.Errorf("default rate %d out of range", defaultRateBps)
	}
	return &service{repo: repo, defaultRateBps: defaultRateBps}, nil
}

// Resolve walks pos > location > tenant > header > default > zero and stops
// at the first tier that answers. Stored rates are trusted; they were
// validated on write.
func (s *service) Resolve(ctx context.Context, input ResolveInput) (Resolution, error) {
	if input.TenantID == uuid.Nil {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}

	if input.POSInstanceID != nil {
		override, err := s.repo.FindPOSOverride(ctx, input.TenantID, *input.POSInstanceID)
		if err != nil {
			return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up pos override")
		}
		if override != nil {
			return Resolution{RateBps: override.RateBps, Source: SourcePOSInstance}, nil
		}
	}

	if input.LocationID != nil {
		override, err := s.repo.FindLocationOverride(ctx, input.TenantID, *input.LocationID)
		if err != nil {
			return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up location override")
		}
		if override != nil {
			return Resolution{RateBps: override.RateBps, Source: SourceLocation}, nil
		}
	}

	override, err := s.repo.FindTenantOverride(ctx, input.TenantID)
	if err != nil {
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up tenant override")
	}
	if override != nil {
		return Resolution{RateBps: override.RateBps, Source: SourceTenant}, nil
	}

	if input.HeaderRateBps != nil {
		rate := *input.HeaderRateBps
		if rate < 0 || rate > MaxRateBps {
			return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "header rate out of range")
		}
		return Resolution{RateBps: rate, Source: SourceHeader}, nil
	}

	if s.defaultRateBps > 0 {
		return Resolution{RateBps: s.defaultRateBps, Source: SourceDefault}, nil
	}
	return Resolution{RateBps: 0, Source: SourceZero}, nil
}

// SetOverride validates the rate and upserts the override for its tier.
func (s *service) SetOverride(ctx context.Context, input SetOverrideInput) (*models.TaxOverride, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if input.RateBps < 0 || input.RateBps > MaxRateBps {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate_bps must be between 0 and 10000")
	}
	if input.POSInstanceID != nil && input.LocationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pos override requires its location")
	}

	existing, err := s.findTierOverride(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up existing override")
	}
	if existing != nil {
		if err := s.repo.UpdateRate(ctx, existing.ID, input.RateBps); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating override")
		}
		existing.RateBps = input.RateBps
		return existing, nil
	}

	override := &models.TaxOverride{
		TenantID:      input.TenantID,
		LocationID:    input.LocationID,
		POSInstanceID: input.POSInstanceID,
		RateBps:       input.RateBps,
	}
	created, err := s.repo.Create(ctx, override)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an override already exists for this scope")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating override")
	}
	return created, nil
}

func (s *service) findTierOverride(ctx context.Context, input SetOverrideInput) (*models.TaxOverride, error) {
	switch {
	case input.POSInstanceID != nil:
		return s.repo.FindPOSOverride(ctx, input.TenantID, *input.POSInstanceID)
	case input.LocationID != nil:
		return s.repo.FindLocationOverride(ctx, input.TenantID, *input.LocationID)
	default:
		return s.repo.FindTenantOverride(ctx, input.TenantID)
	}
}

// ListOverrides returns every override row for the tenant.
func (s *service) ListOverrides(ctx context.Context, tenantID uuid.UUID) ([]models.TaxOverride, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	rows, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing overrides")
	}
	return rows, nil
}

// DeleteOverride removes one override owned by the tenant.
func (s *service) DeleteOverride(ctx context.Context, tenantID, id uuid.UUID) error {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id and override id are required")
	}
	existing, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up override")
	}
	if existing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tax override not found")
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting override")
	}
	return nil
}
