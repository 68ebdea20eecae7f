package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

// Order represents a customer order and the snapshot of its totals.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber    string            `gorm:"column:order_number;not null;uniqueIndex:idx_orders_number"`
	CustomerID     uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Customer       *Customer         `gorm:"foreignKey:CustomerID"`
	UserID         *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	Status         enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	TotalCents     int               `gorm:"column:total_cents;not null;default:0"`
	Notes          *string           `gorm:"column:notes"`
	TrackingNumber *string           `gorm:"column:tracking_number"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
