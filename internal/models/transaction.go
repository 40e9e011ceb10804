package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// DateLayout is the wire format of a transaction's calendar date.
const DateLayout = "2006-01-02"

// Transaction is an income or expense record tied to exactly one wallet.
// Amount is always positive; the sign comes from Type.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	WalletID    string          `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Category    string          `gorm:"not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `json:"description"`
	Timestamp   time.Time       `gorm:"not null" json:"timestamp"`
}

// Delta returns the signed amount this transaction contributes to its
// wallet's balance.
func (t *Transaction) Delta() decimal.Decimal {
	return SignedAmount(t.Type, t.Amount)
}

// SignedAmount returns +amount for income and -amount for expense.
func SignedAmount(txType TransactionType, amount decimal.Decimal) decimal.Decimal {
	if txType == TransactionTypeIncome {
		return amount
	}
	return amount.Neg()
}

// TruncateToDate drops the time-of-day of t, keeping its calendar date in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
