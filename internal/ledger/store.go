// Package ledger is the document store behind the balance consistency
// engine. It exposes a user-scoped, all-or-nothing transaction primitive with
// optimistic concurrency control, and a live change feed per collection.
//
// A transaction closure must do all of its reads before its first write.
// Every write to a wallet or savings pocket is checked against the version
// observed when the document was read; if another writer committed in
// between, the write fails with ErrConflict, the whole attempt is rolled back
// and the closure is run again from scratch.
package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"danaku/internal/models"
)

var (
	// ErrNotFound is returned by Tx reads for missing documents, including
	// documents that belong to another user.
	ErrNotFound = errors.New("ledger: document not found")

	// ErrConflict means the read set changed before commit. Store.Transact
	// retries on it and only returns it once its retry budget is spent.
	ErrConflict = errors.New("ledger: concurrent modification")

	// ErrReadAfterWrite is returned when a closure reads after it has written.
	ErrReadAfterWrite = errors.New("ledger: read after write in transaction")
)

// Collection names a per-user collection of documents.
type Collection string

const (
	CollectionWallets      Collection = "wallets"
	CollectionTransactions Collection = "transactions"
	CollectionSavings      Collection = "savings"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{CollectionWallets, CollectionTransactions, CollectionSavings}

// ParseCollection maps a collection name to a Collection.
func ParseCollection(name string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Store is the transactional document store.
type Store interface {
	// Transact runs fn atomically against userID's documents. fn may be
	// invoked more than once and must not have side effects outside tx.
	Transact(ctx context.Context, userID string, fn func(tx Tx) error) error

	// Subscribe registers for post-commit change events on userID's
	// collections. No collections means all of them.
	Subscribe(userID string, collections ...Collection) *Subscription
}

// Tx is the handle a transaction closure reads and writes through. All
// documents are implicitly scoped to the transaction's user.
type Tx interface {
	Wallet(id string) (*models.Wallet, error)
	Transactions(ids []string) ([]models.Transaction, error)
	TransactionsByWallet(walletID string) ([]models.Transaction, error)
	Pocket(id string) (*models.SavingsPocket, error)

	InsertWallet(w *models.Wallet) error
	SetWalletBalance(w *models.Wallet, balance decimal.Decimal) error
	SetWalletArchived(w *models.Wallet, archived bool) error
	RenameWallet(w *models.Wallet, name string) error
	DeleteWallet(w *models.Wallet) error

	InsertTransaction(t *models.Transaction) error
	DeleteTransaction(t *models.Transaction) error

	InsertPocket(p *models.SavingsPocket) error
	SetPocketAmount(p *models.SavingsPocket, amount decimal.Decimal) error
	DeletePocket(p *models.SavingsPocket) error
}
