package services

import (
	"context"

	"gorm.io/gorm"

	"danaku/internal/models"
	"danaku/internal/report"
)

// reportService assembles the dashboard from committed data.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// Summary loads the user's wallets, transactions and pockets and aggregates
// them. Balances are read as stored; they are kept consistent on write.
func (s *reportService) Summary(ctx context.Context, userID string) (*report.Summary, error) {
	db := s.db.WithContext(ctx)

	var wallets []models.Wallet
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&wallets).Error; err != nil {
		return nil, queryError(err)
	}

	var txs []models.Transaction
	if err := db.Where("user_id = ?", userID).Find(&txs).Error; err != nil {
		return nil, queryError(err)
	}

	var pockets []models.SavingsPocket
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&pockets).Error; err != nil {
		return nil, queryError(err)
	}

	return report.Build(wallets, txs, pockets), nil
}
