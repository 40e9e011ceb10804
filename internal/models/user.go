package models

import "time"

// DefaultCurrency is used for profiles and wallets created without one.
const DefaultCurrency = "IDR"

// User is the profile of a registered user. Every wallet, transaction and
// savings pocket is scoped to exactly one user.
type User struct {
	Base
	Name                string     `gorm:"not null;default:''" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Currency            string     `gorm:"size:3;not null;default:'IDR'" json:"currency"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// DisplayName returns the profile name, or fallback when it is empty.
func (u *User) DisplayName(fallback string) string {
	if u.Name == "" {
		return fallback
	}
	return u.Name
}
