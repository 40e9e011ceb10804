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

// savingsService handles savings pockets. A pocket's current amount is its
// own source of truth and never goes below zero.
type savingsService struct {
	db    *gorm.DB
	store ledger.Store
}

// NewSavingsService creates a new SavingsServicer.
func NewSavingsService(db *gorm.DB, store ledger.Store) SavingsServicer {
	return &savingsService{db: db, store: store}
}

// CreatePocket creates an empty savings pocket.
func (s *savingsService) CreatePocket(ctx context.Context, userID, name string, target decimal.Decimal) (*models.SavingsPocket, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "pocket name is required")
	}
	if !target.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must be greater than zero")
	}
	if !models.FitsMoney(target) {
		return nil, errMoneyRange
	}

	pocket := &models.SavingsPocket{Name: name, Target: target, CurrentAmount: decimal.Zero}
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		pocket.ID = ""
		return tx.InsertPocket(pocket)
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrPocketNotFound)
	}
	return pocket, nil
}

// GetPocket retrieves a savings pocket by ID for a specific user.
func (s *savingsService) GetPocket(ctx context.Context, userID, pocketID string) (*models.SavingsPocket, error) {
	if !uuid.IsValid(pocketID) {
		return nil, apperrors.ErrPocketNotFound
	}

	var pocket models.SavingsPocket
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", pocketID, userID).First(&pocket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPocketNotFound
		}
		return nil, queryError(err)
	}
	return &pocket, nil
}

// ListPockets retrieves a paginated list of the user's savings pockets.
func (s *savingsService) ListPockets(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsPocket], error) {
	base := s.db.WithContext(ctx).Model(&models.SavingsPocket{}).Where("user_id = ?", userID)

	result, err := pagination.Find[models.SavingsPocket](base, page, "created_at ASC", "id ASC")
	if err != nil {
		return nil, queryError(err)
	}
	return result, nil
}

// AdjustSavingsPocket adds delta to the pocket's current amount. A positive
// delta saves money, a negative one withdraws it. Withdrawing more than the
// pocket holds fails with ErrInvalidAmount and writes nothing.
func (s *savingsService) AdjustSavingsPocket(ctx context.Context, userID, pocketID string, delta decimal.Decimal) (*models.SavingsPocket, error) {
	if delta.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be zero")
	}
	if !models.FitsMoney(delta) {
		return nil, errMoneyRange
	}

	var result *models.SavingsPocket
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		pocket, err := tx.Pocket(pocketID)
		if err != nil {
			return err
		}

		newAmount := pocket.CurrentAmount.Add(delta)
		if newAmount.IsNegative() {
			return apperrors.ErrInvalidAmount
		}
		if !models.FitsMoney(newAmount) {
			return errBalanceRange
		}

		if err := tx.SetPocketAmount(pocket, newAmount); err != nil {
			return err
		}
		result = pocket
		return nil
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrPocketNotFound)
	}
	return result, nil
}

// DeletePocket deletes a savings pocket.
func (s *savingsService) DeletePocket(ctx context.Context, userID, pocketID string) error {
	err := s.store.Transact(ctx, userID, func(tx ledger.Tx) error {
		pocket, err := tx.Pocket(pocketID)
		if err != nil {
			return err
		}
		return tx.DeletePocket(pocket)
	})
	return storeError(err, apperrors.ErrPocketNotFound)
}
