package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "danaku/internal/errors"
	"danaku/internal/ledger"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/uuid"
)

// walletService handles wallet lifecycle operations.
type walletService struct {
	db    *gorm.DB
	store ledger.Store
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB, store ledger.Store) WalletServicer {
	return &walletService{db: db, store: store}
}

// CreateWallet creates an empty wallet. Without a currency the wallet uses
// the user's profile currency.
func (s *walletService) CreateWallet(ctx context.Context, userID, name, currency string) (*models.Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.profileCurrency(ctx, userID)
	}

	wallet := &models.Wallet{Name: name, Currency: currency, Balance: decimal.Zero}
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		wallet.ID = ""
		return tx.InsertWallet(wallet)
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrWalletNotFound)
	}
	return wallet, nil
}

func (s *walletService) profileCurrency(ctx context.Context, userID string) string {
	var user models.User
	if err := s.db.WithContext(ctx).Select("currency").Where("id = ?", userID).First(&user).Error; err != nil || user.Currency == "" {
		return models.DefaultCurrency
	}
	return user.Currency
}

// GetWallet retrieves a wallet by ID for a specific user.
func (s *walletService) GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	if !uuid.IsValid(walletID) {
		return nil, apperrors.ErrWalletNotFound
	}

	var wallet models.Wallet
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", walletID, userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, queryError(err)
	}
	return &wallet, nil
}

// ListWallets retrieves a paginated list of the user's wallets, oldest first.
func (s *walletService) ListWallets(ctx context.Context, userID string, page pagination.PageRequest, includeArchived bool) (*pagination.PageResponse[models.Wallet], error) {
	base := s.db.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", userID)
	if !includeArchived {
		base = base.Where("is_archived = ?", false)
	}

	result, err := pagination.Find[models.Wallet](base, page, "created_at ASC", "id ASC")
	if err != nil {
		return nil, queryError(err)
	}
	return result, nil
}

// RenameWallet changes a wallet's display name.
func (s *walletService) RenameWallet(ctx context.Context, userID, walletID, name string) (*models.Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
	}

	var result *models.Wallet
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		wallet, err := tx.Wallet(walletID)
		if err != nil {
			return err
		}
		if wallet.Name != name {
			if err := tx.RenameWallet(wallet, name); err != nil {
				return err
			}
		}
		result = wallet
		return nil
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrWalletNotFound)
	}
	return result, nil
}

// ArchiveWallet sets the archived flag. Setting the flag to its current
// value writes nothing. Balance and transactions are never touched.
func (s *walletService) ArchiveWallet(ctx context.Context, userID, walletID string, archived bool) (*models.Wallet, error) {
	var result *models.Wallet
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		wallet, err := tx.Wallet(walletID)
		if err != nil {
			return err
		}
		if wallet.IsArchived != archived {
			if err := tx.SetWalletArchived(wallet, archived); err != nil {
				return err
			}
		}
		result = wallet
		return nil
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrWalletNotFound)
	}
	return result, nil
}

// DeleteWallet deletes a wallet together with every transaction that
// references it, in one atomic unit. It returns the number of transactions
// removed by the cascade.
func (s *walletService) DeleteWallet(ctx context.Context, userID, walletID string) (int, error) {
	var cascaded int
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		wallet, err := tx.Wallet(walletID)
		if err != nil {
			return err
		}
		txs, err := tx.TransactionsByWallet(wallet.ID)
		if err != nil {
			return err
		}

		for i := range txs {
			if err := tx.DeleteTransaction(&txs[i]); err != nil {
				return err
			}
		}
		if err := tx.DeleteWallet(wallet); err != nil {
			return err
		}
		cascaded = len(txs)
		return nil
	})
	if err != nil {
		return 0, storeError(err, apperrors.ErrWalletNotFound)
	}
	return cascaded, nil
}
