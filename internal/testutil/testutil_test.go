package testutil_test

import (
	"testing"

	"danaku/internal/errors"
	"danaku/internal/models"
	"danaku/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "wallets", "transactions", "savings_pockets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 5000)
	testutil.AssertBalance(t, db, wallet.ID, 5000)
	testutil.AssertWalletConsistent(t, db, wallet.ID)

	if n := testutil.CountTransactions(t, db, wallet.ID); n != 1 {
		t.Errorf("expected 1 opening transaction, got %d", n)
	}

	pocket := testutil.CreateTestPocket(t, db, user.ID, 500000, 0)
	if pocket.Version != 1 {
		t.Errorf("expected version 1, got %d", pocket.Version)
	}

	empty := testutil.CreateTestWallet(t, db, user.ID)
	if empty.State() != models.WalletStateActive {
		t.Errorf("expected active wallet, got %s", empty.State())
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrWalletNotFound, "custom message")
	testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
