// Package digest builds and sends the daily summary email. It only reads
// committed wallets and transactions; it never writes to them.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"danaku/internal/mailer"
	"danaku/internal/models"
	"danaku/internal/report"
)

// DefaultName greets users who have not set a name.
const DefaultName = "User"

// Report is the content of one user's daily email.
type Report struct {
	UserID           string
	Name             string
	Email            string
	Date             string
	TotalBalance     decimal.Decimal
	TransactionCount int
}

// Message converts the report to the EmailJS template parameters.
func (r *Report) Message() mailer.Message {
	return mailer.Message{
		ToEmail: r.Email,
		Params: map[string]interface{}{
			"to_name":            r.Name,
			"date":               r.Date,
			"total_balance":      FormatRupiah(r.TotalBalance),
			"total_transactions": r.TransactionCount,
		},
	}
}

// Builder computes reports from the database.
type Builder struct {
	db *gorm.DB
}

// NewBuilder creates a new Builder.
func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{db: db}
}

// Build computes user's report for the day containing now. The total is the
// signed sum of all of the user's transactions.
func (b *Builder) Build(ctx context.Context, user *models.User, now time.Time) (*Report, error) {
	var txs []models.Transaction
	if err := b.db.WithContext(ctx).
		Select("type", "amount").
		Where("user_id = ?", user.ID).
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("loading transactions for user %s: %w", user.ID, err)
	}

	return &Report{
		UserID:           user.ID,
		Name:             user.DisplayName(DefaultName),
		Email:            user.Email,
		Date:             FormatDate(now),
		TotalBalance:     report.SignedSum(txs),
		TransactionCount: len(txs),
	}, nil
}
