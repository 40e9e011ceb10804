package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"danaku/internal/ledger"
	"danaku/internal/models"
	"danaku/internal/testutil"
)

func newTestStore(db *gorm.DB) ledger.Store {
	return ledger.NewGormStore(db, ledger.NewHub(), ledger.Options{MaxAttempts: 5})
}

// setup returns an isolated database and a store over it.
func setup(t *testing.T) (*gorm.DB, ledger.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return db, newTestStore(db)
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// errInjected simulates the store failing part way through an attempt.
var errInjected = errors.New("injected store failure")

// recordingStore wraps a Store and hands closures a recordingTx.
type recordingStore struct {
	ledger.Store

	mu               sync.Mutex
	walletWrites     map[string]int
	walletReads      map[string]int
	failOnFirstWrite bool
	failOnDelete     int // fail the n-th transaction delete; 0 disables
	deletes          int
}

func newRecordingStore(inner ledger.Store) *recordingStore {
	return &recordingStore{
		Store:        inner,
		walletWrites: make(map[string]int),
		walletReads:  make(map[string]int),
	}
}

func (s *recordingStore) Transact(ctx context.Context, userID string, fn func(tx ledger.Tx) error) error {
	return s.Store.Transact(ctx, userID, func(tx ledger.Tx) error {
		return fn(&recordingTx{Tx: tx, store: s})
	})
}

type recordingTx struct {
	ledger.Tx
	store *recordingStore
}

func (t *recordingTx) Wallet(id string) (*models.Wallet, error) {
	t.store.mu.Lock()
	t.store.walletReads[id]++
	t.store.mu.Unlock()
	return t.Tx.Wallet(id)
}

func (t *recordingTx) SetWalletBalance(w *models.Wallet, balance decimal.Decimal) error {
	if t.store.failOnFirstWrite {
		return errInjected
	}
	t.store.mu.Lock()
	t.store.walletWrites[w.ID]++
	t.store.mu.Unlock()
	return t.Tx.SetWalletBalance(w, balance)
}

func (t *recordingTx) DeleteTransaction(tr *models.Transaction) error {
	if t.store.failOnFirstWrite {
		return errInjected
	}
	t.store.mu.Lock()
	t.store.deletes++
	n := t.store.deletes
	t.store.mu.Unlock()
	if n == t.store.failOnDelete {
		return errInjected
	}
	return t.Tx.DeleteTransaction(tr)
}
