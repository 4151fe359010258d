package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradejournal/internal/models"
)

type ListTradesParams struct {
	UserID          uint64
	AccountID       *uint64
	Symbol          *string
	Side            *string
	SetupStrategyID *uint64
	EntryTypeID     *uint64
	Limit           int
	Offset          int
}

type ClosedTradesParams struct {
	UserID    uint64
	AccountID *uint64
	Since     *time.Time
	Until     *time.Time
}

type ListAuditLogsParams struct {
	UserID *uint64
	Path   *string
	Limit  int
	Offset int
}

// BalanceDrift reports an account whose stored balance disagrees with the
// recomputed invariant.
type BalanceDrift struct {
	AccountID uint64
	Stored    decimal.Decimal
	Expected  decimal.Decimal
}

type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users & tokens
	CreateUser(ctx context.Context, item *models.User) error
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateAuthToken(ctx context.Context, item *models.AuthToken) error
	GetAuthTokenByHash(ctx context.Context, hash string) (*models.AuthToken, error)
	TouchAuthToken(ctx context.Context, id uint64, usedAt time.Time) error

	// Accounts (always scoped to the owning user)
	CreateAccount(ctx context.Context, item *models.Account) error
	GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error)
	GetAccountAny(ctx context.Context, id uint64) (*models.Account, error)
	ListAccounts(ctx context.Context, userID uint64) ([]models.Account, error)
	UpdateAccount(ctx context.Context, item *models.Account) error
	DeleteAccount(ctx context.Context, userID, id uint64) error
	ListBalanceDrifts(ctx context.Context) ([]BalanceDrift, error)

	// Trades. The Tx variants run inside the caller's transaction so a trade
	// mutation and its balance adjustment commit or roll back together.
	CreateTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error
	SaveTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error
	DeleteTradeTx(ctx context.Context, tx *gorm.DB, id uint64) error
	AdjustAccountBalanceTx(ctx context.Context, tx *gorm.DB, accountID uint64, delta decimal.Decimal) error
	GetAccountBalanceTx(ctx context.Context, tx *gorm.DB, accountID uint64) (decimal.Decimal, error)
	GetTrade(ctx context.Context, id uint64) (*models.Trade, error)
	GetTradeScoped(ctx context.Context, userID, id uint64) (*models.Trade, error)
	ListTrades(ctx context.Context, params ListTradesParams) ([]models.Trade, error)
	CountTrades(ctx context.Context, params ListTradesParams) (int64, error)
	ListClosedTrades(ctx context.Context, params ClosedTradesParams) ([]models.Trade, error)
	ListEquityTrades(ctx context.Context, accountID uint64) ([]models.Trade, error)

	// Setup strategies & entry types (own + public visibility)
	CreateSetupStrategy(ctx context.Context, item *models.SetupStrategy) error
	GetSetupStrategy(ctx context.Context, id uint64) (*models.SetupStrategy, error)
	ListSetupStrategies(ctx context.Context, userID uint64) ([]models.SetupStrategy, error)
	UpdateSetupStrategy(ctx context.Context, item *models.SetupStrategy) error
	DeleteSetupStrategy(ctx context.Context, id uint64) error

	CreateEntryType(ctx context.Context, item *models.EntryType) error
	GetEntryType(ctx context.Context, id uint64) (*models.EntryType, error)
	ListEntryTypes(ctx context.Context, userID uint64) ([]models.EntryType, error)
	UpdateEntryType(ctx context.Context, item *models.EntryType) error
	DeleteEntryType(ctx context.Context, id uint64) error

	// Documentation
	GetOrCreateWidget(ctx context.Context, ownerKind string, ownerID uint64) (*models.DocumentationWidget, error)
	GetWidget(ctx context.Context, id uint64) (*models.DocumentationWidget, error)
	ListWidgets(ctx context.Context, ownerKind string, ownerID uint64) ([]models.DocumentationWidget, error)
	CreateDocItem(ctx context.Context, item *models.DocumentationItem) error
	CreateDocItemTx(ctx context.Context, tx *gorm.DB, item *models.DocumentationItem) error
	GetDocItem(ctx context.Context, id uint64) (*models.DocumentationItem, error)
	ListDocItems(ctx context.Context, ownerKind string, ownerID uint64) ([]models.DocumentationItem, error)
	MaxDocItemOrder(ctx context.Context, ownerKind string, ownerID uint64) (int, error)
	DeleteDocItem(ctx context.Context, id uint64) error
	DeleteDocItemsForOwner(ctx context.Context, tx *gorm.DB, ownerKind string, ownerID uint64) error

	// Audit
	InsertAuditLog(ctx context.Context, item *models.AuditLog) error
	ListAuditLogs(ctx context.Context, params ListAuditLogsParams) ([]models.AuditLog, error)
}
