package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

// Product represents a sellable catalog item. Status is a cached projection of
// the product's stock records and is recomputed whenever quantities change.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SKU          string              `gorm:"column:sku;not null;uniqueIndex:idx_products_sku"`
	Name         string              `gorm:"column:name;not null"`
	Description  *string             `gorm:"column:description"`
	CategoryID   *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	Category     *Category           `gorm:"foreignKey:CategoryID"`
	PriceCents   int                 `gorm:"column:price_cents;not null"`
	CostCents    int                 `gorm:"column:cost_cents;not null;default:0"`
	Status       enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'out_of_stock'"`
	IsActive     bool                `gorm:"column:is_active;not null;default:true"`
	StockRecords []StockRecord       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
