package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "danaku/internal/errors"
	"danaku/internal/ledger"
	"danaku/internal/models"
)

// snapshotService loads whole collections for live subscribers.
type snapshotService struct {
	db *gorm.DB
}

// NewSnapshotService creates a new SnapshotServicer.
func NewSnapshotService(db *gorm.DB) SnapshotServicer {
	return &snapshotService{db: db}
}

// Snapshot returns the current contents of one of the user's collections,
// in the same order the list endpoints use.
func (s *snapshotService) Snapshot(ctx context.Context, userID string, collection ledger.Collection) (interface{}, error) {
	db := s.db.WithContext(ctx).Where("user_id = ?", userID)

	switch collection {
	case ledger.CollectionWallets:
		wallets := []models.Wallet{}
		if err := db.Order("created_at ASC, id ASC").Find(&wallets).Error; err != nil {
			return nil, queryError(err)
		}
		return wallets, nil

	case ledger.CollectionTransactions:
		txs := []models.Transaction{}
		if err := db.Order("date DESC, timestamp DESC").Find(&txs).Error; err != nil {
			return nil, queryError(err)
		}
		return txs, nil

	case ledger.CollectionSavings:
		pockets := []models.SavingsPocket{}
		if err := db.Order("created_at ASC, id ASC").Find(&pockets).Error; err != nil {
			return nil, queryError(err)
		}
		return pockets, nil

	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown collection "+string(collection))
	}
}
