package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
)

// AdjustInput moves stock for one product at one location.
type AdjustInput struct {
	LocationID uuid.UUID
	ProductID  uuid.UUID
	Delta      int
}

// Service exposes stock reads and admin adjustments.
type Service interface {
	GetLevel(ctx context.Context, tenantID, locationID, productID uuid.UUID) (*models.InventoryLevel, error)
	ListLevels(ctx context.Context, tenantID, locationID uuid.UUID) ([]models.InventoryLevel, error)
	Adjust(ctx context.Context, tenantID uuid.UUID, input AdjustInput) (*models.InventoryLevel, error)
}

type service struct {
	repo *Repository
}

// NewService constructs an inventory service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetLevel(ctx context.Context, tenantID, locationID, productID uuid.UUID) (*models.InventoryLevel, error) {
	level, err := s.repo.Get(ctx, tenantID, locationID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock level")
	}
	if level == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock level not found")
	}
	return level, nil
}

func (s *service) ListLevels(ctx context.Context, tenantID, locationID uuid.UUID) ([]models.InventoryLevel, error) {
	rows, err := s.repo.ListByLocation(ctx, tenantID, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock levels")
	}
	return rows, nil
}

func (s *service) Adjust(ctx context.Context, tenantID uuid.UUID, input AdjustInput) (*models.InventoryLevel, error) {
	if input.LocationID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location_id and product_id are required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta cannot be zero")
	}

	err := s.repo.Adjust(ctx, tenantID, input.LocationID, input.ProductID, input.Delta)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "adjustment would drive stock negative")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjusting stock")
	}
	level, err := s.repo.Get(ctx, tenantID, input.LocationID, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock level")
	}
	return level, nil
}
