package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem captures the snapshot of one product line within an order.
// UnitPriceCents is copied from the product at order time.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	Product        *Product   `gorm:"foreignKey:ProductID"`
	WarehouseID    *uuid.UUID `gorm:"column:warehouse_id;type:uuid"`
	Qty            int        `gorm:"column:qty;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	SubtotalCents  int        `gorm:"column:subtotal_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
