package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
)

// Ledger holds the transactional stock primitives shared by the inventory
// service and order fulfillment. Every method takes the caller's transaction
// so quantity changes commit or roll back with the surrounding work.
type Ledger struct {
	repo Repository
}

// NewLedger constructs a Ledger over the provided repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// StatusChange reports a recompute outcome for a product's cached status.
type StatusChange struct {
	ProductID uuid.UUID
	From      enums.ProductStatus
	To        enums.ProductStatus
	Changed   bool
}

// Adjust applies a signed delta to the stock record for product/warehouse
// under a row lock. A missing record starts from a zero baseline. Quantities
// never go below zero; a delta that would do so fails with an insufficient
// stock error and leaves the row untouched.
func (l *Ledger) Adjust(ctx context.Context, tx *gorm.DB, productID, warehouseID uuid.UUID, delta int) (*models.StockRecord, error) {
	repo := l.repo.WithTx(tx)

	record, err := l.lockOrCreate(ctx, repo, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	next := record.Quantity + delta
	if next < 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientStock, "stock adjustment below zero").
			WithDetails(map[string]any{
				"product_id":   productID.String(),
				"warehouse_id": warehouseID.String(),
				"available":    record.Quantity,
				"requested":    -delta,
			})
	}

	if err := repo.UpdateQuantity(ctx, record.ID, next); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating stock quantity")
	}
	record.Quantity = next
	return record, nil
}

// Allocate finds the first warehouse able to cover qty for the product,
// locks it, and decrements its quantity. Warehouses are scanned in creation
// order so allocation is deterministic.
func (l *Ledger) Allocate(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.StockRecord, error) {
	if qty <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "allocation quantity must be positive")
	}

	repo := l.repo.WithTx(tx)

	record, err := repo.LockFirstWithCapacity(ctx, productID, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			available, sumErr := l.totalAvailable(ctx, repo, productID)
			if sumErr != nil {
				return nil, sumErr
			}
			return nil, apperrors.New(apperrors.CodeInsufficientStock, "no warehouse can cover requested quantity").
				WithDetails(map[string]any{
					"product_id": productID.String(),
					"requested":  qty,
					"available":  available,
				})
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "locating stock for allocation")
	}

	next := record.Quantity - qty
	if err := repo.UpdateQuantity(ctx, record.ID, next); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "decrementing allocated stock")
	}
	record.Quantity = next
	return record, nil
}

// RecomputeStatus refreshes the product's cached stock status from its
// current records and reports whether the status changed.
func (l *Ledger) RecomputeStatus(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (StatusChange, error) {
	repo := l.repo.WithTx(tx)

	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusChange{}, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return StatusChange{}, apperrors.Wrap(apperrors.CodeInternal, err, "loading product for status recompute")
	}

	records, err := repo.FindByProduct(ctx, productID)
	if err != nil {
		return StatusChange{}, apperrors.Wrap(apperrors.CodeInternal, err, "loading stock records for status recompute")
	}

	change := StatusChange{
		ProductID: productID,
		From:      product.Status,
		To:        DeriveStatus(records),
	}
	if change.To == change.From {
		return change, nil
	}

	if err := repo.UpdateProductStatus(ctx, productID, change.To); err != nil {
		return StatusChange{}, apperrors.Wrap(apperrors.CodeInternal, err, "updating product status")
	}
	change.Changed = true
	return change, nil
}

// lockOrCreate locks the product/warehouse record, inserting a zero-quantity
// baseline first when none exists. The insert ignores conflicts and the row
// is re-locked afterwards, so a record committed by a concurrent transaction
// keeps its quantity.
func (l *Ledger) lockOrCreate(ctx context.Context, repo Repository, productID, warehouseID uuid.UUID) (*models.StockRecord, error) {
	record, err := repo.LockRecord(ctx, productID, warehouseID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "locking stock record")
	}

	seed := &models.StockRecord{
		ID:                uuid.New(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          0,
		LowStockThreshold: DefaultLowStockThreshold,
	}
	if err := repo.CreateIfAbsent(ctx, seed); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating stock record")
	}

	record, err = repo.LockRecord(ctx, productID, warehouseID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "locking stock record")
	}
	return record, nil
}

func (l *Ledger) totalAvailable(ctx context.Context, repo Repository, productID uuid.UUID) (int, error) {
	records, err := repo.FindByProduct(ctx, productID)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "summing available stock")
	}
	total := 0
	for _, record := range records {
		total += record.Quantity
	}
	return total, nil
}
