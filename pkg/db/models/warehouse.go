package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse represents a physical stock location.
type Warehouse struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name         string        `gorm:"column:name;not null"`
	Code         string        `gorm:"column:code;not null;uniqueIndex:idx_warehouses_code"`
	Address      *string       `gorm:"column:address"`
	City         *string       `gorm:"column:city"`
	Country      *string       `gorm:"column:country"`
	Latitude     *float64      `gorm:"column:latitude;type:numeric(9,6)"`
	Longitude    *float64      `gorm:"column:longitude;type:numeric(9,6)"`
	Capacity     int           `gorm:"column:capacity;not null;default:0"`
	IsActive     bool          `gorm:"column:is_active;not null;default:true"`
	StockRecords []StockRecord `gorm:"foreignKey:WarehouseID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
