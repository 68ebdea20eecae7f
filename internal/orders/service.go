package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/internal/inventory"
	dbpkg "github.com/dcastroh/stockpilot-backend/pkg/db"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

const orderNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Notifier receives post-commit order notifications. Failures are logged and
// never surface to the caller; a lost notification must not undo an order.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order, from enums.OrderStatus)
}

// StatusChangedPayload is the outbox payload for order status transitions.
type StatusChangedPayload struct {
	OrderNumber string `json:"order_number"`
	From        string `json:"from,omitempty"`
	To          string `json:"to"`
	TotalCents  int    `json:"total_cents"`
}

// Service executes order orchestration.
type Service interface {
	Create(ctx context.Context, actor *outbox.ActorRef, input CreateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	ledger   *inventory.Ledger
	outbox   outboxPublisher
	notifier Notifier
	logg     *logger.Logger
}

// NewService builds the orders service.
func NewService(
	tx txRunner,
	repo Repository,
	ledger *inventory.Ledger,
	publisher outboxPublisher,
	notifier Notifier,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		ledger:   ledger,
		outbox:   publisher,
		notifier: notifier,
		logg:     logg,
	}, nil
}

// Create places an order: it snapshots prices from the product rows,
// allocates stock for each line from the first warehouse able to cover it,
// refreshes product statuses, and commits everything atomically. Stock is
// never oversold; any failure rolls the whole order back.
func (s *service) Create(ctx context.Context, actor *outbox.ActorRef, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "order requires at least one item")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, apperrors.New(apperrors.CodeValidation, "product id required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Qty <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"index": i, "qty": item.Qty})
		}
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		customer, err := repo.FindCustomer(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "customer not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading customer")
		}
		if customer.Status != enums.CustomerStatusActive {
			return apperrors.New(apperrors.CodeStateConflict, "customer is inactive")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		total := 0
		touched := map[uuid.UUID]struct{}{}
		for _, line := range input.Items {
			product, err := repo.FindProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.New(apperrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": line.ProductID.String()})
				}
				return apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
			}
			if !product.IsActive {
				return apperrors.New(apperrors.CodeStateConflict, "product is inactive").
					WithDetails(map[string]any{"product_id": line.ProductID.String()})
			}

			record, err := s.ledger.Allocate(ctx, tx, line.ProductID, line.Qty)
			if err != nil {
				return err
			}

			warehouseID := record.WarehouseID
			subtotal := product.PriceCents * line.Qty
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				ProductID:      line.ProductID,
				WarehouseID:    &warehouseID,
				Qty:            line.Qty,
				UnitPriceCents: product.PriceCents,
				SubtotalCents:  subtotal,
			})
			total += subtotal
			touched[line.ProductID] = struct{}{}
		}

		var placedBy *uuid.UUID
		if actor != nil {
			userID := actor.UserID
			placedBy = &userID
		}
		order, err := s.createWithFreshNumber(ctx, repo, &models.Order{
			ID:         uuid.New(),
			CustomerID: input.CustomerID,
			UserID:     placedBy,
			Status:     enums.OrderStatusPending,
			TotalCents: total,
			Notes:      input.Notes,
		})
		if err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "creating order items")
		}
		order.Items = items

		for productID := range touched {
			if err := s.emitOnStockStatusChange(ctx, tx, actor, productID); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Version:       1,
			Data: StatusChangedPayload{
				OrderNumber: order.OrderNumber,
				To:          string(order.Status),
				TotalCents:  order.TotalCents,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing order created event")
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderNumber(ctx, result.OrderNumber)
		s.logg.Info(logCtx, "order created")
	}
	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, result)
	}
	return result, nil
}

// UpdateStatus advances an order along pending -> processing -> shipped ->
// delivered, or cancels it from any non-terminal state. Cancelling returns
// each line's stock to the warehouse it was allocated from.
func (s *service) UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid order status")
	}

	var result *models.Order
	var previous enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "order not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
		}

		if !order.Status.CanTransitionTo(input.Status) {
			return apperrors.New(apperrors.CodeStateConflict, "status transition disallowed").
				WithDetails(map[string]any{
					"from": string(order.Status),
					"to":   string(input.Status),
				})
		}

		if input.Status == enums.OrderStatusCancelled {
			if err := s.returnStock(ctx, tx, actor, order); err != nil {
				return err
			}
		}

		if err := repo.UpdateStatus(ctx, orderID, input.Status, input.TrackingNumber); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "updating order status")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Version:       1,
			Data: StatusChangedPayload{
				OrderNumber: order.OrderNumber,
				From:        string(order.Status),
				To:          string(input.Status),
				TotalCents:  order.TotalCents,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing status changed event")
		}

		previous = order.Status
		order.Status = input.Status
		if input.TrackingNumber != nil {
			order.TrackingNumber = input.TrackingNumber
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{"from": string(previous), "to": string(result.Status)}
		logCtx := s.logg.WithFields(s.logg.WithOrderNumber(ctx, result.OrderNumber), fields)
		s.logg.Info(logCtx, "order status updated")
	}
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, result, previous)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}

// createWithFreshNumber inserts the order, regenerating the number when the
// random suffix collides with an existing one.
func (s *service) createWithFreshNumber(ctx context.Context, repo Repository, order *models.Order) (*models.Order, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = NewOrderNumber()
		created, err := repo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !dbpkg.IsUniqueViolation(err, "idx_orders_number", "orders.order_number") {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating order")
		}
	}
	return nil, apperrors.New(apperrors.CodeInternal, "exhausted order number attempts")
}

// returnStock restocks every line at the warehouse it was drawn from.
func (s *service) returnStock(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, order *models.Order) error {
	for _, item := range order.Items {
		if item.WarehouseID == nil {
			continue
		}
		if _, err := s.ledger.Adjust(ctx, tx, item.ProductID, *item.WarehouseID, item.Qty); err != nil {
			return err
		}
		if err := s.emitOnStockStatusChange(ctx, tx, actor, item.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) emitOnStockStatusChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, productID uuid.UUID) error {
	change, err := s.ledger.RecomputeStatus(ctx, tx, productID)
	if err != nil {
		return err
	}
	if !change.Changed {
		return nil
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockStatusChanged,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		Actor:         actor,
		Version:       1,
		Data: inventory.StockStatusChangedPayload{
			ProductID: productID.String(),
			From:      string(change.From),
			To:        string(change.To),
		},
	})
}
