package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service coordinates stock mutations: every quantity change runs in a
// transaction, refreshes the product's cached status, and queues a domain
// event when the status flips.
type Service struct {
	tx     txRunner
	repo   Repository
	ledger *Ledger
	events eventEmitter
	logg   *logger.Logger
}

// NewService wires the inventory service.
func NewService(tx txRunner, repo Repository, events eventEmitter, logg *logger.Logger) *Service {
	return &Service{
		tx:     tx,
		repo:   repo,
		ledger: NewLedger(repo),
		events: events,
		logg:   logg,
	}
}

// Ledger exposes the transactional primitives for other services that manage
// their own transactions, order fulfillment in particular.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// RestockInput captures a stock receipt at one warehouse.
type RestockInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Qty         int
	Threshold   *int
}

// StockStatusChangedPayload is the outbox payload for status transitions.
type StockStatusChangedPayload struct {
	ProductID string `json:"product_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// ProductStock is the read model for a product's stock position.
type ProductStock struct {
	Product *models.Product
	Records []models.StockRecord
	Total   int
}

// GetProductStock returns the product, its per-warehouse records, and the
// summed quantity.
func (s *Service) GetProductStock(ctx context.Context, productID uuid.UUID) (*ProductStock, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
	}

	records, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading stock records")
	}

	total := 0
	for _, record := range records {
		total += record.Quantity
	}
	return &ProductStock{Product: product, Records: records, Total: total}, nil
}

// Restock receives qty units of a product into a warehouse, creating the
// stock record on first receipt. An optional threshold override is applied
// before status recompute.
func (s *Service) Restock(ctx context.Context, actor *outbox.ActorRef, input RestockInput) (*models.StockRecord, error) {
	if input.Qty <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "restock quantity must be positive")
	}
	if input.Threshold != nil && *input.Threshold < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "low stock threshold cannot be negative")
	}

	var result *models.StockRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindProduct(ctx, input.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "product not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
		}

		adjusted, err := s.ledger.Adjust(ctx, tx, input.ProductID, input.WarehouseID, input.Qty)
		if err != nil {
			return err
		}

		if input.Threshold != nil && *input.Threshold != adjusted.LowStockThreshold {
			if err := repo.UpdateThreshold(ctx, adjusted.ID, *input.Threshold); err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "updating low stock threshold")
			}
			adjusted.LowStockThreshold = *input.Threshold
		}

		if err := s.emitOnStatusChange(ctx, tx, actor, input.ProductID); err != nil {
			return err
		}
		result = adjusted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{
			"product_id":   input.ProductID.String(),
			"warehouse_id": input.WarehouseID.String(),
			"qty":          input.Qty,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "stock received")
	}
	return result, nil
}

// AdjustStock applies a signed delta at one warehouse and refreshes the
// product status. Used for manual corrections.
func (s *Service) AdjustStock(ctx context.Context, actor *outbox.ActorRef, productID, warehouseID uuid.UUID, delta int) (*models.StockRecord, error) {
	if delta == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "adjustment delta cannot be zero")
	}

	var result *models.StockRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		adjusted, err := s.ledger.Adjust(ctx, tx, productID, warehouseID, delta)
		if err != nil {
			return err
		}
		if err := s.emitOnStatusChange(ctx, tx, actor, productID); err != nil {
			return err
		}
		result = adjusted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetThreshold updates the low stock threshold for one record and refreshes
// the product status, since the threshold feeds the derivation.
func (s *Service) SetThreshold(ctx context.Context, actor *outbox.ActorRef, productID, warehouseID uuid.UUID, threshold int) (*models.StockRecord, error) {
	if threshold < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "low stock threshold cannot be negative")
	}

	var result *models.StockRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.LockRecord(ctx, productID, warehouseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "stock record not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "locking stock record")
		}
		if err := repo.UpdateThreshold(ctx, record.ID, threshold); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "updating low stock threshold")
		}
		record.LowStockThreshold = threshold

		if err := s.emitOnStatusChange(ctx, tx, actor, productID); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// emitOnStatusChange recomputes the cached product status and queues a
// domain event when it moved.
func (s *Service) emitOnStatusChange(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, productID uuid.UUID) error {
	change, err := s.ledger.RecomputeStatus(ctx, tx, productID)
	if err != nil {
		return err
	}
	if !change.Changed || s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockStatusChanged,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		Actor:         actor,
		Version:       1,
		Data: StockStatusChangedPayload{
			ProductID: productID.String(),
			From:      string(change.From),
			To:        string(change.To),
		},
	})
}
