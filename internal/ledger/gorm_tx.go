package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"danaku/internal/models"
	"danaku/internal/uuid"
)

// gormTx implements Tx on top of an open GORM transaction.
type gormTx struct {
	db      *gorm.DB
	userID  string
	wrote   bool
	touched map[Collection]struct{}
}

func newGormTx(userID string) *gormTx {
	return &gormTx{userID: userID, touched: make(map[Collection]struct{})}
}

func (t *gormTx) beginRead() error {
	if t.wrote {
		return ErrReadAfterWrite
	}
	return nil
}

func (t *gormTx) beginWrite(c Collection) {
	t.wrote = true
	t.touched[c] = struct{}{}
}

func (t *gormTx) touchedCollections() []Collection {
	out := make([]Collection, 0, len(t.touched))
	for _, c := range Collections {
		if _, ok := t.touched[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *gormTx) first(dest interface{}, id string) error {
	if err := t.beginRead(); err != nil {
		return err
	}
	if !uuid.IsValid(id) {
		return ErrNotFound
	}
	err := t.db.Where("id = ? AND user_id = ?", id, t.userID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (t *gormTx) Wallet(id string) (*models.Wallet, error) {
	var w models.Wallet
	if err := t.first(&w, id); err != nil {
		return nil, err
	}
	return &w, nil
}

func (t *gormTx) Pocket(id string) (*models.SavingsPocket, error) {
	var p models.SavingsPocket
	if err := t.first(&p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Transactions returns the user's transactions among ids. Ids that do not
// exist are simply absent from the result.
func (t *gormTx) Transactions(ids []string) ([]models.Transaction, error) {
	if err := t.beginRead(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var txs []models.Transaction
	err := t.db.Where("user_id = ? AND id IN ?", t.userID, ids).
		Order("id").
		Find(&txs).Error
	return txs, err
}

func (t *gormTx) TransactionsByWallet(walletID string) ([]models.Transaction, error) {
	if err := t.beginRead(); err != nil {
		return nil, err
	}
	var txs []models.Transaction
	err := t.db.Where("user_id = ? AND wallet_id = ?", t.userID, walletID).
		Order("id").
		Find(&txs).Error
	return txs, err
}

// updateVersioned applies fields to one document only if its version is
// still the one that was read, and bumps the version.
func (t *gormTx) updateVersioned(model interface{}, c Collection, id string, version *int64, fields map[string]interface{}) error {
	t.beginWrite(c)
	fields["version"] = *version + 1
	fields["updated_at"] = time.Now()

	res := t.db.Model(model).
		Where("id = ? AND user_id = ? AND version = ?", id, t.userID, *version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	*version++
	return nil
}

// deleteVersioned removes one document. A zero version skips the version
// check, which is used for immutable documents.
func (t *gormTx) deleteVersioned(model interface{}, c Collection, id string, version int64) error {
	t.beginWrite(c)
	q := t.db.Where("id = ? AND user_id = ?", id, t.userID)
	if version > 0 {
		q = q.Where("version = ?", version)
	}
	res := q.Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (t *gormTx) insert(c Collection, doc interface{}) error {
	t.beginWrite(c)
	return t.db.Create(doc).Error
}

func (t *gormTx) InsertWallet(w *models.Wallet) error {
	w.UserID = t.userID
	w.Version = 1
	return t.insert(CollectionWallets, w)
}

func (t *gormTx) SetWalletBalance(w *models.Wallet, balance decimal.Decimal) error {
	if err := t.updateVersioned(&models.Wallet{}, CollectionWallets, w.ID, &w.Version,
		map[string]interface{}{"balance": balance}); err != nil {
		return err
	}
	w.Balance = balance
	return nil
}

func (t *gormTx) SetWalletArchived(w *models.Wallet, archived bool) error {
	if err := t.updateVersioned(&models.Wallet{}, CollectionWallets, w.ID, &w.Version,
		map[string]interface{}{"is_archived": archived}); err != nil {
		return err
	}
	w.IsArchived = archived
	return nil
}

func (t *gormTx) RenameWallet(w *models.Wallet, name string) error {
	if err := t.updateVersioned(&models.Wallet{}, CollectionWallets, w.ID, &w.Version,
		map[string]interface{}{"name": name}); err != nil {
		return err
	}
	w.Name = name
	return nil
}

func (t *gormTx) DeleteWallet(w *models.Wallet) error {
	return t.deleteVersioned(&models.Wallet{}, CollectionWallets, w.ID, w.Version)
}

func (t *gormTx) InsertTransaction(tr *models.Transaction) error {
	tr.UserID = t.userID
	return t.insert(CollectionTransactions, tr)
}

func (t *gormTx) DeleteTransaction(tr *models.Transaction) error {
	return t.deleteVersioned(&models.Transaction{}, CollectionTransactions, tr.ID, 0)
}

func (t *gormTx) InsertPocket(p *models.SavingsPocket) error {
	p.UserID = t.userID
	p.Version = 1
	return t.insert(CollectionSavings, p)
}

func (t *gormTx) SetPocketAmount(p *models.SavingsPocket, amount decimal.Decimal) error {
	if err := t.updateVersioned(&models.SavingsPocket{}, CollectionSavings, p.ID, &p.Version,
		map[string]interface{}{"current_amount": amount}); err != nil {
		return err
	}
	p.CurrentAmount = amount
	return nil
}

func (t *gormTx) DeletePocket(p *models.SavingsPocket) error {
	return t.deleteVersioned(&models.SavingsPocket{}, CollectionSavings, p.ID, p.Version)
}
