package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novapos/novapos-backend/internal/idempotency"
	"github.com/novapos/novapos-backend/internal/inventory"
	"github.com/novapos/novapos-backend/internal/tax"
	"github.com/novapos/novapos-backend/pkg/db/models"
	"github.com/novapos/novapos-backend/pkg/enums"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/logger"
	"github.com/novapos/novapos-backend/pkg/outbox"
	"github.com/novapos/novapos-backend/pkg/outbox/payloads"
	"github.com/novapos/novapos-backend/pkg/pagination"
)

// CreateOrderInput is one checkout submission.
type CreateOrderInput struct {
	TenantID       uuid.UUID
	LocationID     *uuid.UUID
	POSInstanceID  *uuid.UUID
	CustomerID     *uuid.UUID
	HeaderRateBps  *int
	Currency       string
	IdempotencyKey string
	Lines          []LineInput
	Actor          *outbox.ActorRef
}

// CreateReturnInput reverses lines from a previously paid order.
type CreateReturnInput struct {
	TenantID       uuid.UUID
	ParentOrderID  uuid.UUID
	Reason         string
	IdempotencyKey string
	Lines          []LineInput
	Actor          *outbox.ActorRef
}

type rateResolver interface {
	Resolve(ctx context.Context, input tax.ResolveInput) (tax.Resolution, error)
}

type productCatalog interface {
	FindActiveByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type stockAdjuster interface {
	AdjustTx(ctx context.Context, tx *gorm.DB, tenantID, locationID, productID uuid.UUID, delta int) error
}

type orderStore interface {
	CreateTx(tx *gorm.DB, order *models.Order) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Order, bool, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status enums.OrderStatus) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type mutationGuard interface {
	Execute(ctx context.Context, tenantID uuid.UUID, key string, mutation idempotency.Mutation) (*idempotency.Result, error)
}

// Service exposes checkout, returns, and order reads.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*idempotency.Result, error)
	CreateReturn(ctx context.Context, input CreateReturnInput) (*idempotency.Result, error)
	GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo      orderStore
	rates     rateResolver
	catalog   productCatalog
	stock     stockAdjuster
	publisher eventEmitter
	guard     mutationGuard
	logg      *logger.Logger
}

// NewService wires the order engine with its collaborators.
func NewService(
	repo orderStore,
	rates rateResolver,
	catalog productCatalog,
	stock stockAdjuster,
	publisher eventEmitter,
	guard mutationGuard,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if rates == nil {
		return nil, fmt.Errorf("tax service required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	return &service{
		repo:      repo,
		rates:     rates,
		catalog:   catalog,
		stock:     stock,
		publisher: publisher,
		guard:     guard,
		logg:      logg,
	}, nil
}

// CreateOrder prices the cart, persists the order, decrements stock, and
// queues the order_created event. The whole write runs under the idempotency
// guard, so a retried key replays the first response instead of selling twice.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*idempotency.Result, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	currency := enums.CurrencyUSD
	if trimmed := strings.TrimSpace(input.Currency); trimmed != "" {
		parsed, err := enums.ParseCurrency(trimmed)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
		}
		currency = parsed
	}

	// Validation and pricing run inside the guarded mutation so a retried
	// key replays the memoized response even if state moved since.
	return s.guard.Execute(ctx, input.TenantID, input.IdempotencyKey, func(tx *gorm.DB) (int, any, error) {
		resolution, err := s.rates.Resolve(ctx, tax.ResolveInput{
			TenantID:      input.TenantID,
			LocationID:    input.LocationID,
			POSInstanceID: input.POSInstanceID,
			HeaderRateBps: input.HeaderRateBps,
		})
		if err != nil {
			return 0, nil, err
		}

		productIDs := make([]uuid.UUID, 0, len(input.Lines))
		for _, line := range input.Lines {
			productIDs = append(productIDs, line.ProductID)
		}
		products, err := s.catalog.FindActiveByIDs(ctx, input.TenantID, productIDs)
		if err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
		}

		computation, err := compute(input.Lines, products, resolution.RateBps, 1)
		if err != nil {
			return 0, nil, err
		}

		order := &models.Order{
			TenantID:      input.TenantID,
			LocationID:    input.LocationID,
			POSInstanceID: input.POSInstanceID,
			CustomerID:    input.CustomerID,
			Status:        enums.OrderStatusCreated,
			Currency:      currency,
			SubtotalMinor: computation.SubtotalMinor,
			TaxMinor:      computation.TaxMinor,
			TotalMinor:    computation.TotalMinor,
			TaxRateBps:    computation.RateBps,
			Items:         toLineItems(computation.Lines),
		}
		if err := s.repo.CreateTx(tx, order); err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
		}

		if input.LocationID != nil {
			for _, line := range computation.Lines {
				err := s.stock.AdjustTx(ctx, tx, input.TenantID, *input.LocationID, line.ProductID, -line.Quantity)
				if err != nil {
					if errors.Is(err, inventory.ErrInsufficientStock) {
						return 0, nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product "+line.ProductID.String())
					}
					return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjusting stock")
				}
			}
		}

		err = s.publisher.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				TenantID:      order.TenantID,
				LocationID:    order.LocationID,
				POSInstanceID: order.POSInstanceID,
				Currency:      order.Currency,
				SubtotalMinor: order.SubtotalMinor,
				TaxMinor:      order.TaxMinor,
				TotalMinor:    order.TotalMinor,
				TaxRateBps:    order.TaxRateBps,
				LineCount:     len(order.Items),
			},
		})
		if err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing order_created event")
		}

		dto := toOrderDTO(order)
		dto.TaxSource = string(resolution.Source)
		return http.StatusCreated, dto, nil
	})
}

// CreateReturn creates a negative order against a paid sale. Lines are priced
// at the parent's captured unit prices and taxed at the parent's rate, so the
// refund mirrors what was charged even if the catalog moved since.
func (s *service) CreateReturn(ctx context.Context, input CreateReturnInput) (*idempotency.Result, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if input.ParentOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent order id is required")
	}

	// Parent checks run inside the guarded mutation: the first commit marks
	// the parent refunded, so a retried key must replay rather than re-check.
	return s.guard.Execute(ctx, input.TenantID, input.IdempotencyKey, func(tx *gorm.DB) (int, any, error) {
		parent, err := s.repo.FindByID(ctx, input.TenantID, input.ParentOrderID)
		if err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading parent order")
		}
		if parent == nil {
			return 0, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if parent.ParentOrderID != nil {
			return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot return a return order")
		}
		if parent.Status != enums.OrderStatusPaid {
			return 0, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be returned")
		}

		soldQuantities := make(map[uuid.UUID]int, len(parent.Items))
		priceBook := make(map[uuid.UUID]models.Product, len(parent.Items))
		for _, item := range parent.Items {
			soldQuantities[item.ProductID] += item.Quantity
			priceBook[item.ProductID] = models.Product{ID: item.ProductID, UnitPrice: item.UnitPrice}
		}
		for _, line := range input.Lines {
			if line.Quantity > soldQuantities[line.ProductID] {
				return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "return quantity exceeds sold quantity for product "+line.ProductID.String())
			}
		}

		computation, err := compute(input.Lines, priceBook, parent.TaxRateBps, -1)
		if err != nil {
			return 0, nil, err
		}

		parentID := parent.ID
		returnOrder := &models.Order{
			TenantID:      input.TenantID,
			LocationID:    parent.LocationID,
			POSInstanceID: parent.POSInstanceID,
			CustomerID:    parent.CustomerID,
			ParentOrderID: &parentID,
			Status:        enums.OrderStatusCreated,
			Currency:      parent.Currency,
			SubtotalMinor: computation.SubtotalMinor,
			TaxMinor:      computation.TaxMinor,
			TotalMinor:    computation.TotalMinor,
			TaxRateBps:    computation.RateBps,
			Items:         toLineItems(computation.Lines),
		}
		if err := s.repo.CreateTx(tx, returnOrder); err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating return order")
		}

		if parent.LocationID != nil {
			for _, line := range computation.Lines {
				// Line quantities are negative on a return, so restocking
				// negates them back.
				err := s.stock.AdjustTx(ctx, tx, input.TenantID, *parent.LocationID, line.ProductID, -line.Quantity)
				if err != nil {
					return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restocking returned lines")
				}
			}
		}

		if err := s.repo.UpdateStatusTx(tx, parent.ID, enums.OrderStatusRefunded); err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking parent order refunded")
		}

		err = s.publisher.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderReturned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   returnOrder.ID,
			Actor:         input.Actor,
			Data: payloads.OrderReturnedEvent{
				ReturnOrderID: returnOrder.ID,
				ParentOrderID: parent.ID,
				TenantID:      input.TenantID,
				TotalMinor:    returnOrder.TotalMinor,
				Reason:        strings.TrimSpace(input.Reason),
			},
		})
		if err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing order_returned event")
		}

		return http.StatusCreated, toOrderDTO(returnOrder), nil
	})
}

func (s *service) GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*OrderDTO, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and order id are required")
	}
	order, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return toOrderDTO(order), nil
}

func (s *service) ListOrders(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	params.Limit = pagination.NormalizeLimit(params.Limit)
	rows, hasMore, err := s.repo.List(ctx, tenantID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}

	result := &ListResult{Orders: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		result.Orders = append(result.Orders, *toOrderDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func toLineItems(lines []ComputedLine) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderLineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return items
}
