package testutil

import (
	"errors"
	"testing"

	apperrors "danaku/internal/errors"
	"danaku/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance checks a wallet's stored balance.
func AssertBalance(t *testing.T, db *gorm.DB, walletID string, want int64) {
	t.Helper()

	w := ReloadWallet(t, db, walletID)
	if !w.Balance.Equal(decimal.NewFromInt(want)) {
		t.Errorf("expected wallet balance %d, got %s", want, w.Balance)
	}
}

// AssertWalletConsistent checks that a wallet's stored balance equals the
// signed sum of the transactions that reference it.
func AssertWalletConsistent(t *testing.T, db *gorm.DB, walletID string) {
	t.Helper()

	w := ReloadWallet(t, db, walletID)

	var txs []models.Transaction
	if err := db.Where("wallet_id = ?", walletID).Find(&txs).Error; err != nil {
		t.Fatalf("failed to load transactions: %v", err)
	}

	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].Delta())
	}

	if !w.Balance.Equal(sum) {
		t.Errorf("wallet %s inconsistent: balance %s, transactions sum to %s (%d transactions)",
			walletID, w.Balance, sum, len(txs))
	}
}
