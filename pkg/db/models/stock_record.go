package models

import (
	"time"

	"github.com/google/uuid"
)

// StockRecord tracks the on-hand quantity of one product at one warehouse.
// A product holds at most one record per warehouse.
type StockRecord struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID         uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_stock_product_warehouse"`
	WarehouseID       uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_stock_product_warehouse"`
	Product           *Product   `gorm:"foreignKey:ProductID"`
	Warehouse         *Warehouse `gorm:"foreignKey:WarehouseID"`
	Quantity          int        `gorm:"column:quantity;not null;default:0"`
	LowStockThreshold int        `gorm:"column:low_stock_threshold;not null;default:20"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLow reports whether this record sits at or below its own threshold while
// still holding stock.
func (s StockRecord) IsLow() bool {
	return s.Quantity > 0 && s.Quantity <= s.LowStockThreshold
}
