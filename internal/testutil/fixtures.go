package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"danaku/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Currency: models.DefaultCurrency,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestWallet creates an empty IDR wallet.
func CreateTestWallet(t *testing.T, db *gorm.DB, userID string) *models.Wallet {
	t.Helper()
	return CreateTestWalletWithBalance(t, db, userID, 0)
}

// CreateTestWalletWithBalance creates a wallet whose balance is backed by an
// "Initial balance" income transaction, so the wallet starts consistent.
func CreateTestWalletWithBalance(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Wallet %d", nextID()),
		Currency: models.DefaultCurrency,
		Balance:  decimal.NewFromInt(balance),
		Version:  1,
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}

	if balance > 0 {
		CreateTestTransaction(t, db, userID, wallet.ID, models.TransactionTypeIncome, "Initial balance", balance)
	}
	return wallet
}

// CreateTestTransaction inserts a transaction row directly, without touching
// the wallet balance. Pair it with a matching wallet balance.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, walletID string, txType models.TransactionType, category string, amount int64) *models.Transaction {
	t.Helper()

	now := time.Now()
	tx := &models.Transaction{
		UserID:    userID,
		WalletID:  walletID,
		Type:      txType,
		Category:  category,
		Amount:    decimal.NewFromInt(amount),
		Date:      models.TruncateToDate(now),
		Timestamp: now,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestPocket creates a savings pocket with the given target and amount.
func CreateTestPocket(t *testing.T, db *gorm.DB, userID string, target, current int64) *models.SavingsPocket {
	t.Helper()

	pocket := &models.SavingsPocket{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Pocket %d", nextID()),
		Target:        decimal.NewFromInt(target),
		CurrentAmount: decimal.NewFromInt(current),
		Version:       1,
	}
	if err := db.Create(pocket).Error; err != nil {
		t.Fatalf("failed to create test pocket: %v", err)
	}
	return pocket
}

// ReloadWallet reads a wallet straight from the database.
func ReloadWallet(t *testing.T, db *gorm.DB, walletID string) *models.Wallet {
	t.Helper()

	var w models.Wallet
	if err := db.Where("id = ?", walletID).First(&w).Error; err != nil {
		t.Fatalf("failed to reload wallet %s: %v", walletID, err)
	}
	return &w
}

// ReloadPocket reads a savings pocket straight from the database.
func ReloadPocket(t *testing.T, db *gorm.DB, pocketID string) *models.SavingsPocket {
	t.Helper()

	var p models.SavingsPocket
	if err := db.Where("id = ?", pocketID).First(&p).Error; err != nil {
		t.Fatalf("failed to reload pocket %s: %v", pocketID, err)
	}
	return &p
}

// CountTransactions returns how many transactions reference walletID.
func CountTransactions(t *testing.T, db *gorm.DB, walletID string) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.Transaction{}).Where("wallet_id = ?", walletID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count transactions: %v", err)
	}
	return n
}
