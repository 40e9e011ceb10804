package models

import (
	"time"

	"danaku/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Ledger documents are hard
// deleted, so there is no soft-delete column.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Wallet{},
		&Transaction{},
		&SavingsPocket{},
		&AuditLog{},
	}
}
