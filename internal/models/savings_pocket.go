package models

import "github.com/shopspring/decimal"

// SavingsPocket is a goal-tracking balance, independent of any wallet.
// CurrentAmount is its only source of truth and never drops below zero.
type SavingsPocket struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	Target        decimal.Decimal `gorm:"type:text;not null" json:"target"`
	CurrentAmount decimal.Decimal `gorm:"type:text;not null;default:0" json:"current_amount"`
	Version       int64           `gorm:"not null;default:1" json:"version"`
}

// TableName keeps the collection name used by the rest of the system.
func (SavingsPocket) TableName() string {
	return "savings_pockets"
}
