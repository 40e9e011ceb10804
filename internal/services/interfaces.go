package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"danaku/internal/ledger"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/report"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password, currency string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateProfile(userID string, name, currency *string) (*models.User, error)
}

// WalletServicer defines the contract for wallet lifecycle operations.
// DeleteWallet and ArchiveWallet are balance-consistency operations and
// run as single store transactions.
type WalletServicer interface {
	CreateWallet(ctx context.Context, userID, name, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID string, page pagination.PageRequest, includeArchived bool) (*pagination.PageResponse[models.Wallet], error)
	RenameWallet(ctx context.Context, userID, walletID, name string) (*models.Wallet, error)
	ArchiveWallet(ctx context.Context, userID, walletID string, archived bool) (*models.Wallet, error)
	DeleteWallet(ctx context.Context, userID, walletID string) (int, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	WalletID *string
	Type     *models.TransactionType
	Category *string
	FromDate *time.Time
	ToDate   *time.Time
}

// AddTransactionInput carries the fields of a new transaction.
type AddTransactionInput struct {
	WalletID    string
	Type        models.TransactionType
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// DeleteResult reports what a bulk delete did. Ids that were malformed,
// duplicated or not found are counted as skipped.
type DeleteResult struct {
	Deleted        int `json:"deleted"`
	Skipped        int `json:"skipped"`
	WalletsUpdated int `json:"wallets_updated"`
}

// TransactionServicer defines the contract for transaction operations.
type TransactionServicer interface {
	AddTransaction(ctx context.Context, userID string, in AddTransactionInput) (*models.Transaction, error)
	DeleteTransactions(ctx context.Context, userID string, ids []string) (*DeleteResult, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// SavingsServicer defines the contract for savings pocket operations.
type SavingsServicer interface {
	CreatePocket(ctx context.Context, userID, name string, target decimal.Decimal) (*models.SavingsPocket, error)
	GetPocket(ctx context.Context, userID, pocketID string) (*models.SavingsPocket, error)
	ListPockets(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsPocket], error)
	AdjustSavingsPocket(ctx context.Context, userID, pocketID string, delta decimal.Decimal) (*models.SavingsPocket, error)
	DeletePocket(ctx context.Context, userID, pocketID string) error
}

// ReportServicer defines the contract for dashboard aggregation.
type ReportServicer interface {
	Summary(ctx context.Context, userID string) (*report.Summary, error)
}

// SnapshotServicer loads a whole collection for live subscribers.
type SnapshotServicer interface {
	Snapshot(ctx context.Context, userID string, collection ledger.Collection) (interface{}, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
