package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "danaku/internal/errors"
	"danaku/internal/ledger"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/uuid"
)

// transactionService handles transaction-related business logic. Every
// mutation keeps the affected wallet balances equal to the signed sum of
// their transactions.
type transactionService struct {
	db    *gorm.DB
	store ledger.Store
	now   func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, store ledger.Store) TransactionServicer {
	return &transactionService{db: db, store: store, now: time.Now}
}

var (
	errMoneyRange   = apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most 4 decimal places and 16 integer digits")
	errBalanceRange = apperrors.WithMessage(apperrors.ErrInvalidInput, "resulting balance exceeds the supported range")
)

func validateAddTransaction(in *AddTransactionInput) error {
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.WalletID == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet ID is required")
	case !in.Type.Valid():
		return apperrors.ErrInvalidTransactionType
	case in.Category == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	case !in.Amount.IsPositive():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	case !models.FitsMoney(in.Amount):
		return errMoneyRange
	case in.Date.IsZero():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	return nil
}

// AddTransaction records an income or expense and applies it to the wallet
// balance in the same atomic unit. An expense larger than the balance fails
// with ErrInsufficientFunds and writes nothing.
func (s *transactionService) AddTransaction(ctx context.Context, userID string, in AddTransactionInput) (*models.Transaction, error) {
	if err := validateAddTransaction(&in); err != nil {
		return nil, err
	}

	var result *models.Transaction
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		wallet, err := tx.Wallet(in.WalletID)
		if err != nil {
			return err
		}

		newBalance := wallet.Balance.Add(models.SignedAmount(in.Type, in.Amount))
		if newBalance.IsNegative() {
			return apperrors.ErrInsufficientFunds
		}
		if !models.FitsMoney(newBalance) {
			return errBalanceRange
		}

		if err := tx.SetWalletBalance(wallet, newBalance); err != nil {
			return err
		}

		transaction := &models.Transaction{
			WalletID:    wallet.ID,
			Type:        in.Type,
			Category:    in.Category,
			Amount:      in.Amount,
			Date:        models.TruncateToDate(in.Date),
			Description: in.Description,
			Timestamp:   s.now(),
		}
		if err := tx.InsertTransaction(transaction); err != nil {
			return err
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrWalletNotFound)
	}
	return result, nil
}

// DeleteTransactions deletes a batch of transactions and reverses their
// effect on every wallet they touched. Reversals are accumulated per wallet
// before any write, so each wallet is read once and written once no matter
// how many of its transactions are in the batch. Transactions whose wallet no
// longer exists are still deleted.
func (s *transactionService) DeleteTransactions(ctx context.Context, userID string, ids []string) (*DeleteResult, error) {
	valid, _ := uuid.FilterValid(ids)
	if len(valid) == 0 {
		return &DeleteResult{Skipped: len(ids)}, nil
	}

	result := &DeleteResult{}
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		txs, err := tx.Transactions(valid)
		if err != nil {
			return err
		}

		reversals := make(map[string]decimal.Decimal)
		var walletOrder []string
		for i := range txs {
			walletID := txs[i].WalletID
			if _, seen := reversals[walletID]; !seen {
				walletOrder = append(walletOrder, walletID)
			}
			reversals[walletID] = reversals[walletID].Sub(txs[i].Delta())
		}

		type pendingBalance struct {
			wallet  *models.Wallet
			balance decimal.Decimal
		}
		pending := make([]pendingBalance, 0, len(walletOrder))
		for _, walletID := range walletOrder {
			wallet, err := tx.Wallet(walletID)
			if errors.Is(err, ledger.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			newBalance := wallet.Balance.Add(reversals[walletID])
			if newBalance.IsNegative() {
				return apperrors.WithMessage(apperrors.ErrInsufficientFunds,
					"deleting these transactions would make wallet "+wallet.Name+" negative")
			}
			if !models.FitsMoney(newBalance) {
				return errBalanceRange
			}
			pending = append(pending, pendingBalance{wallet: wallet, balance: newBalance})
		}

		for _, p := range pending {
			if err := tx.SetWalletBalance(p.wallet, p.balance); err != nil {
				return err
			}
		}
		for i := range txs {
			if err := tx.DeleteTransaction(&txs[i]); err != nil {
				return err
			}
		}

		result.Deleted = len(txs)
		result.WalletsUpdated = len(pending)
		return nil
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrTransactionNotFound)
	}

	result.Skipped = len(ids) - result.Deleted
	return result, nil
}

// DeleteTransaction deletes one transaction and reverses its effect on the
// wallet balance.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if !uuid.IsValid(transactionID) {
		return apperrors.ErrTransactionNotFound
	}

	result, err := s.DeleteTransactions(ctx, userID, []string{transactionID})
	if err != nil {
		return err
	}
	if result.Deleted == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// GetTransaction retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	if !uuid.IsValid(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}

	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, queryError(err)
	}
	return &transaction, nil
}

// ListTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	result, err := pagination.Find[models.Transaction](base, page, "date DESC", "timestamp DESC")
	if err != nil {
		return nil, queryError(err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.WalletID != nil {
		q = q.Where("wallet_id = ?", *f.WalletID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", models.TruncateToDate(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", models.TruncateToDate(*f.ToDate))
	}
	return q
}
