package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

// Repository defines persistence operations for stock records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockRecord, error)
	// LockRecord loads the stock record under a row lock so concurrent
	// adjustments serialize. Must be called inside a transaction.
	LockRecord(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockRecord, error)
	// LockFirstWithCapacity returns the first warehouse stock record able to
	// cover qty, scanning warehouses in creation order.
	LockFirstWithCapacity(ctx context.Context, productID uuid.UUID, qty int) (*models.StockRecord, error)
	UpdateQuantity(ctx context.Context, recordID uuid.UUID, quantity int) error
	UpdateThreshold(ctx context.Context, recordID uuid.UUID, threshold int) error
	// CreateIfAbsent inserts the record, leaving any existing row for the
	// same product/warehouse untouched.
	CreateIfAbsent(ctx context.Context, record *models.StockRecord) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	UpdateProductStatus(ctx context.Context, productID uuid.UUID, status enums.ProductStatus) error
}
