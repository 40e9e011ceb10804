package services

import (
	"context"
	"testing"

	"danaku/internal/ledger"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/testutil"
)

func TestCreateWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(ctx, user.ID, "  Dompet  ", "usd")
		testutil.AssertNoError(t, err)

		if wallet.ID == "" {
			t.Fatal("expected wallet ID")
		}
		if wallet.Name != "Dompet" || wallet.Currency != "USD" {
			t.Errorf("unexpected wallet %+v", wallet)
		}
		if !wallet.Balance.IsZero() || wallet.Version != 1 || wallet.IsArchived {
			t.Errorf("expected a fresh active wallet, got %+v", wallet)
		}
	})

	t.Run("defaults_to_profile_currency", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("currency", "SGD")

		wallet, err := svc.CreateWallet(ctx, user.ID, "Travel", "")
		testutil.AssertNoError(t, err)

		if wallet.Currency != "SGD" {
			t.Errorf("expected SGD, got %s", wallet.Currency)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateWallet(ctx, user.ID, " ", "IDR")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetWallet(t *testing.T) {
	ctx := context.Background()
	db, store := setup(t)
	svc := NewWalletService(db, store)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, owner.ID)

	got, err := svc.GetWallet(ctx, owner.ID, wallet.ID)
	testutil.AssertNoError(t, err)
	if got.ID != wallet.ID {
		t.Errorf("expected wallet %s, got %s", wallet.ID, got.ID)
	}

	_, err = svc.GetWallet(ctx, other.ID, wallet.ID)
	testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")

	_, err = svc.GetWallet(ctx, owner.ID, "123")
	testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
}

func TestListWallets(t *testing.T) {
	ctx := context.Background()
	db, store := setup(t)
	svc := NewWalletService(db, store)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestWallet(t, db, user.ID)
	archived := testutil.CreateTestWallet(t, db, user.ID)
	db.Model(archived).Update("is_archived", true)
	testutil.CreateTestWallet(t, db, testutil.CreateTestUser(t, db).ID)

	page, err := svc.ListWallets(ctx, user.ID, pagination.PageRequest{}, false)
	testutil.AssertNoError(t, err)
	if page.TotalItems != 1 {
		t.Errorf("expected 1 active wallet, got %d", page.TotalItems)
	}

	page, err = svc.ListWallets(ctx, user.ID, pagination.PageRequest{}, true)
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Errorf("expected 2 wallets including archived, got %d", page.TotalItems)
	}
}

func TestRenameWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 500)

		renamed, err := svc.RenameWallet(ctx, user.ID, wallet.ID, "Tabungan")
		testutil.AssertNoError(t, err)

		if renamed.Name != "Tabungan" || renamed.Version != 2 {
			t.Errorf("unexpected wallet after rename %+v", renamed)
		}
		testutil.AssertBalance(t, db, wallet.ID, 500)
	})

	t.Run("not_found", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.RenameWallet(ctx, user.ID, "01900000-0000-7000-8000-000000000000", "x")
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}

func TestArchiveWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 750)

		first, err := svc.ArchiveWallet(ctx, user.ID, wallet.ID, true)
		testutil.AssertNoError(t, err)
		second, err := svc.ArchiveWallet(ctx, user.ID, wallet.ID, true)
		testutil.AssertNoError(t, err)

		if !first.IsArchived || !second.IsArchived {
			t.Error("expected wallet archived")
		}
		if first.Version != second.Version {
			t.Errorf("second archive must not write, version %d -> %d", first.Version, second.Version)
		}

		stored := testutil.ReloadWallet(t, db, wallet.ID)
		if stored.State() != models.WalletStateArchived {
			t.Errorf("expected archived state, got %s", stored.State())
		}
		testutil.AssertBalance(t, db, wallet.ID, 750)
		if n := testutil.CountTransactions(t, db, wallet.ID); n != 1 {
			t.Errorf("archive must not touch transactions, got %d", n)
		}
	})

	t.Run("unarchive", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.ArchiveWallet(ctx, user.ID, wallet.ID, true)
		testutil.AssertNoError(t, err)
		restored, err := svc.ArchiveWallet(ctx, user.ID, wallet.ID, false)
		testutil.AssertNoError(t, err)

		if restored.State() != models.WalletStateActive {
			t.Errorf("expected active state, got %s", restored.State())
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.ArchiveWallet(ctx, user.ID, "01900000-0000-7000-8000-000000000000", true)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}

func TestDeleteWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario_d_cascade", func(t *testing.T) {
		db, store := setup(t)
		walletSvc := NewWalletService(db, store)
		txSvc := NewTransactionService(db, store)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		keep := testutil.CreateTestWalletWithBalance(t, db, user.ID, 100)

		for _, in := range []AddTransactionInput{
			incomeInput(wallet.ID, "Gaji", 1000),
			expenseInput(wallet.ID, "Jajan", 100),
			expenseInput(wallet.ID, "Hutang", 200),
		} {
			if _, err := txSvc.AddTransaction(ctx, user.ID, in); err != nil {
				t.Fatalf("failed to add transaction: %v", err)
			}
		}

		cascaded, err := walletSvc.DeleteWallet(ctx, user.ID, wallet.ID)
		testutil.AssertNoError(t, err)

		if cascaded != 3 {
			t.Errorf("expected 3 cascaded transactions, got %d", cascaded)
		}
		if n := testutil.CountTransactions(t, db, wallet.ID); n != 0 {
			t.Errorf("expected no transactions left for wallet, got %d", n)
		}
		_, err = walletSvc.GetWallet(ctx, user.ID, wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")

		walletID := wallet.ID
		page, err := txSvc.ListTransactions(ctx, user.ID, pagination.PageRequest{}, TransactionFilter{WalletID: &walletID})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected empty query by deleted wallet, got %d", page.TotalItems)
		}

		testutil.AssertWalletConsistent(t, db, keep.ID)
		if n := testutil.CountTransactions(t, db, keep.ID); n != 1 {
			t.Errorf("other wallets must keep their transactions, got %d", n)
		}
	})

	t.Run("cascade_failure_keeps_wallet_and_transactions", func(t *testing.T) {
		db, inner := setup(t)
		store := newRecordingStore(inner)
		store.failOnDelete = 2
		walletSvc := NewWalletService(db, store)
		txSvc := NewTransactionService(db, inner)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		for _, in := range []AddTransactionInput{
			incomeInput(wallet.ID, "Gaji", 1000),
			expenseInput(wallet.ID, "Jajan", 100),
			expenseInput(wallet.ID, "Hutang", 200),
		} {
			if _, err := txSvc.AddTransaction(ctx, user.ID, in); err != nil {
				t.Fatalf("failed to add transaction: %v", err)
			}
		}

		_, err := walletSvc.DeleteWallet(ctx, user.ID, wallet.ID)
		testutil.AssertAppError(t, err, "TRANSIENT_ERROR")
		if store.deletes < 2 {
			t.Fatalf("expected the failure part way through the cascade, got %d deletes", store.deletes)
		}

		if _, err := walletSvc.GetWallet(ctx, user.ID, wallet.ID); err != nil {
			t.Fatalf("wallet must survive a failed cascade: %v", err)
		}
		if n := testutil.CountTransactions(t, db, wallet.ID); n != 3 {
			t.Errorf("expected all 3 transactions to survive, got %d", n)
		}
		testutil.AssertBalance(t, db, wallet.ID, 700)
		testutil.AssertWalletConsistent(t, db, wallet.ID)
	})

	t.Run("archived_wallet", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10)
		db.Model(wallet).Update("is_archived", true)

		cascaded, err := svc.DeleteWallet(ctx, user.ID, wallet.ID)
		testutil.AssertNoError(t, err)
		if cascaded != 1 {
			t.Errorf("expected 1 cascaded transaction, got %d", cascaded)
		}
	})

	t.Run("deleted_is_terminal", func(t *testing.T) {
		db, store := setup(t)
		svc := NewWalletService(db, store)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.DeleteWallet(ctx, user.ID, wallet.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.DeleteWallet(ctx, user.ID, wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
		_, err = svc.ArchiveWallet(ctx, user.ID, wallet.ID, false)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})

	t.Run("publishes_both_collections", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := ledger.NewHub()
		svc := NewWalletService(db, ledger.NewGormStore(db, hub, ledger.Options{MaxAttempts: 1}))
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10)

		sub := hub.Subscribe(user.ID)
		defer sub.Close()

		_, err := svc.DeleteWallet(ctx, user.ID, wallet.ID)
		testutil.AssertNoError(t, err)

		got := map[ledger.Collection]bool{}
		for _, change := range sub.Changes() {
			got[change.Collection] = true
		}
		if !got[ledger.CollectionWallets] || !got[ledger.CollectionTransactions] {
			t.Errorf("expected wallets and transactions change events, got %v", got)
		}
	})
}
