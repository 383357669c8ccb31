package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/novapos/novapos-backend/pkg/db"
	"github.com/novapos/novapos-backend/pkg/db/models"
	"github.com/novapos/novapos-backend/pkg/enums"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/logger"
	"github.com/novapos/novapos-backend/pkg/outbox"
	"github.com/novapos/novapos-backend/pkg/outbox/payloads"
)

// CreateIntentInput starts payment collection for an order.
type CreateIntentInput struct {
	TenantID uuid.UUID
	OrderID  uuid.UUID
}

// TransitionInput requests one state machine edge.
type TransitionInput struct {
	TenantID uuid.UUID
	IntentID uuid.UUID
	Target   enums.PaymentState
	Reason   string
	Actor    *outbox.ActorRef
}

// PaymentIntentDTO is the API shape of a payment intent.
type PaymentIntentDTO struct {
	ID           uuid.UUID          `json:"id"`
	TenantID     uuid.UUID          `json:"tenant_id"`
	OrderID      uuid.UUID          `json:"order_id"`
	State        enums.PaymentState `json:"state"`
	AmountMinor  int64              `json:"amount_minor"`
	Currency     enums.Currency     `json:"currency"`
	LastReason   *string            `json:"last_reason,omitempty"`
	AuthorizedAt *time.Time         `json:"authorized_at,omitempty"`
	CapturedAt   *time.Time         `json:"captured_at,omitempty"`
	ClosedAt     *time.Time         `json:"closed_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

type intentStore interface {
	Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PaymentIntent, error)
	FindByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.PaymentIntent, error)
	TransitionTx(tx *gorm.DB, id uuid.UUID, from enums.PaymentState, updates map[string]any) (bool, error)
}

type orderStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status enums.OrderStatus) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the payment intent state machine.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntentDTO, error)
	Transition(ctx context.Context, input TransitionInput) (*PaymentIntentDTO, error)
	GetIntent(ctx context.Context, tenantID, id uuid.UUID) (*PaymentIntentDTO, error)
	GetIntentByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*PaymentIntentDTO, error)
}

type service struct {
	db        txRunner
	repo      intentStore
	orders    orderStore
	publisher eventEmitter
	logg      *logger.Logger
}

// NewService wires the payment state machine with its collaborators.
func NewService(db txRunner, repo intentStore, orders orderStore, publisher eventEmitter, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{db: db, repo: repo, orders: orders, publisher: publisher, logg: logg}, nil
}

// CreateIntent opens payment collection for an order at its committed total.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntentDTO, error) {
	if input.TenantID == uuid.Nil || input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and order id are required")
	}

	order, err := s.orders.FindByID(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.ParentOrderID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return orders do not collect payment")
	}
	if order.Status != enums.OrderStatusCreated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}

	intent := &models.PaymentIntent{
		TenantID:    input.TenantID,
		OrderID:     input.OrderID,
		State:       enums.PaymentStateCreated,
		AmountMinor: order.TotalMinor,
		Currency:    order.Currency,
	}
	created, err := s.repo.Create(ctx, intent)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_payment_intents_order") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an open payment intent already exists for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}
	return toIntentDTO(created), nil
}

// Transition moves the intent along one legal edge. The state write, the
// order status follow-up, and the outbox event commit in one transaction,
// and the conditional update keeps two racers from both winning the same
// source state.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*PaymentIntentDTO, error) {
	if input.TenantID == uuid.Nil || input.IntentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and payment intent id are required")
	}
	if !input.Target.IsValid() || input.Target == enums.PaymentStateCreated {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target state")
	}

	intent, err := s.repo.FindByID(ctx, input.TenantID, input.IntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment intent")
	}
	if intent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
	}
	if !canTransition(intent.State, input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition payment from %s to %s", intent.State, input.Target))
	}

	now := time.Now()
	reason := strings.TrimSpace(input.Reason)
	updates := map[string]any{"state": input.Target, "updated_at": now}
	if reason != "" {
		updates["last_reason"] = reason
	}
	switch input.Target {
	case enums.PaymentStateAuthorized:
		updates["authorized_at"] = now
	case enums.PaymentStateCaptured:
		updates["captured_at"] = now
	}
	if input.Target.IsTerminal() {
		updates["closed_at"] = now
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.TransitionTx(tx, intent.ID, intent.State, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment state")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment state changed concurrently")
		}

		if err := s.applyOrderEffect(ctx, tx, intent, input, now); err != nil {
			return err
		}

		eventType, ok := eventForState(input.Target)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInternal, "no event mapped for target state")
		}
		err = s.publisher.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregatePaymentIntent,
			AggregateID:   intent.ID,
			Actor:         input.Actor,
			Data: payloads.PaymentTransitionEvent{
				PaymentIntentID: intent.ID,
				OrderID:         intent.OrderID,
				TenantID:        intent.TenantID,
				FromState:       intent.State,
				ToState:         input.Target,
				AmountMinor:     intent.AmountMinor,
				Reason:          reason,
				TransitionedAt:  now,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing payment event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"payment_intent_id": intent.ID.String(),
			"from_state":        string(intent.State),
			"to_state":          string(input.Target),
		})
		s.logg.Info(logCtx, "payment state transitioned")
	}

	updated, err := s.repo.FindByID(ctx, input.TenantID, input.IntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading payment intent")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
	}
	return toIntentDTO(updated), nil
}

// applyOrderEffect keeps the order status in step with the payment outcome.
func (s *service) applyOrderEffect(ctx context.Context, tx *gorm.DB, intent *models.PaymentIntent, input TransitionInput, now time.Time) error {
	switch input.Target {
	case enums.PaymentStateCaptured:
		if err := s.orders.UpdateStatusTx(tx, intent.OrderID, enums.OrderStatusPaid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking order paid")
		}
		err := s.publisher.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   intent.OrderID,
			Actor:         input.Actor,
			Data: payloads.OrderPaidEvent{
				OrderID:         intent.OrderID,
				TenantID:        intent.TenantID,
				PaymentIntentID: intent.ID,
				AmountMinor:     intent.AmountMinor,
				CapturedAt:      now,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing order_paid event")
		}
	case enums.PaymentStateRefunded:
		if err := s.orders.UpdateStatusTx(tx, intent.OrderID, enums.OrderStatusRefunded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking order refunded")
		}
	case enums.PaymentStateVoided:
		if err := s.orders.UpdateStatusTx(tx, intent.OrderID, enums.OrderStatusVoided); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking order voided")
		}
	}
	return nil
}

func (s *service) GetIntent(ctx context.Context, tenantID, id uuid.UUID) (*PaymentIntentDTO, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and payment intent id are required")
	}
	intent, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment intent")
	}
	if intent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
	}
	return toIntentDTO(intent), nil
}

func (s *service) GetIntentByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*PaymentIntentDTO, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and order id are required")
	}
	intent, err := s.repo.FindByOrderID(ctx, tenantID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment intent")
	}
	if intent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
	}
	return toIntentDTO(intent), nil
}

func toIntentDTO(intent *models.PaymentIntent) *PaymentIntentDTO {
	return &PaymentIntentDTO{
		ID:           intent.ID,
		TenantID:     intent.TenantID,
		OrderID:      intent.OrderID,
		State:        intent.State,
		AmountMinor:  intent.AmountMinor,
		Currency:     intent.Currency,
		LastReason:   intent.LastReason,
		AuthorizedAt: intent.AuthorizedAt,
		CapturedAt:   intent.CapturedAt,
		ClosedAt:     intent.ClosedAt,
		CreatedAt:    intent.CreatedAt,
	}
}
