package models

import "github.com/shopspring/decimal"

// Wallet is a named, currency-tagged balance container. Balance is a cached
// value that must always equal the signed sum of the wallet's transactions.
type Wallet struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string          `gorm:"not null" json:"name"`
	Currency   string          `gorm:"size:3;not null;default:'IDR'" json:"currency"`
	Balance    decimal.Decimal `gorm:"type:text;not null;default:0" json:"balance"`
	IsArchived bool            `gorm:"not null;default:false" json:"is_archived"`
	Version    int64           `gorm:"not null;default:1" json:"version"`
}

// WalletState is the lifecycle state of a wallet.
type WalletState string

const (
	WalletStateActive   WalletState = "active"
	WalletStateArchived WalletState = "archived"
)

// State reports whether the wallet is active or archived. Deleted wallets
// no longer exist and therefore have no state.
func (w *Wallet) State() WalletState {
	if w.IsArchived {
		return WalletStateArchived
	}
	return WalletStateActive
}
