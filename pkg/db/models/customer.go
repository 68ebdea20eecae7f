package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

// Customer represents a buyer account orders are placed against.
type Customer struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name             string               `gorm:"column:name;not null"`
	Company          *string              `gorm:"column:company"`
	Email            string               `gorm:"column:email;not null;uniqueIndex:idx_customers_email"`
	Phone            *string              `gorm:"column:phone"`
	Address          *string              `gorm:"column:address"`
	City             *string              `gorm:"column:city"`
	Country          *string              `gorm:"column:country"`
	Status           enums.CustomerStatus `gorm:"column:status;type:customer_status;not null;default:'active'"`
	CreditLimitCents int                  `gorm:"column:credit_limit_cents;not null;default:0"`
	PaymentTerms     *string              `gorm:"column:payment_terms"`
	CreatedBy        *uuid.UUID           `gorm:"column:created_by;type:uuid"`
	Orders           []Order              `gorm:"foreignKey:CustomerID"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
