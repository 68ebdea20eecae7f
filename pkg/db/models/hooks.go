package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned client-side so freshly created rows carry their key
// before the insert returns. The Postgres schema keeps gen_random_uuid()
// as a server-side fallback for rows created outside the application.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *User) BeforeCreate(*gorm.DB) error         { ensureID(&m.ID); return nil }
func (m *Customer) BeforeCreate(*gorm.DB) error     { ensureID(&m.ID); return nil }
func (m *Warehouse) BeforeCreate(*gorm.DB) error    { ensureID(&m.ID); return nil }
func (m *Category) BeforeCreate(*gorm.DB) error     { ensureID(&m.ID); return nil }
func (m *Product) BeforeCreate(*gorm.DB) error      { ensureID(&m.ID); return nil }
func (m *StockRecord) BeforeCreate(*gorm.DB) error  { ensureID(&m.ID); return nil }
func (m *Order) BeforeCreate(*gorm.DB) error        { ensureID(&m.ID); return nil }
func (m *OrderItem) BeforeCreate(*gorm.DB) error    { ensureID(&m.ID); return nil }
func (m *Notification) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *OutboxEvent) BeforeCreate(*gorm.DB) error  { ensureID(&m.ID); return nil }
