package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Users & tokens ---------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateAuthToken(ctx context.Context, item *models.AuthToken) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAuthTokenByHash(ctx context.Context, hash string) (*models.AuthToken, error) {
	if s == nil || s.db == nil || hash == "" {
		return nil, nil
	}
	var item models.AuthToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) TouchAuthToken(ctx context.Context, id uint64, usedAt time.Time) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.AuthToken{}).
		Where("id = ?", id).
		Update("last_used_at", usedAt).
		Error
}

// --- Accounts ---------------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, item *models.Account) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Account
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetAccountAny(ctx context.Context, id uint64) (*models.Account, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID uint64) ([]models.Account, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateAccount(ctx context.Context, item *models.Account) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteAccount(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	// Trades cascade at the schema level; delete them explicitly as well so
	// sqlite setups without foreign_keys=on behave the same.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&models.Trade{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Account{}).Error
	})
}

func (s *Store) ListBalanceDrifts(ctx context.Context) ([]repository.BalanceDrift, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.BalanceDrift
	err := s.db.WithContext(ctx).
		Table("accounts AS a").
		Select(`
			a.id AS account_id,
			a.current_balance AS stored,
			a.initial_balance + COALESCE(SUM(t.returns),0) AS expected
		`).
		Joins("LEFT JOIN trades AS t ON t.account_id = a.id").
		Group("a.id, a.current_balance, a.initial_balance").
		Having("a.current_balance <> a.initial_balance + COALESCE(SUM(t.returns),0)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// --- Trades -----------------------------------------------------------------

func (s *Store) CreateTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteTradeTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if tx == nil || id == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("id = ?", id).Delete(&models.Trade{}).Error
}

// AdjustAccountBalanceTx applies the delta as a single relative UPDATE so
// concurrent trade writes against one account cannot lose an adjustment.
func (s *Store) AdjustAccountBalanceTx(ctx context.Context, tx *gorm.DB, accountID uint64, delta decimal.Decimal) error {
	if tx == nil || accountID == 0 || delta.IsZero() {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta)).
		Error
}

func (s *Store) GetAccountBalanceTx(ctx context.Context, tx *gorm.DB, accountID uint64) (decimal.Decimal, error) {
	if tx == nil || accountID == 0 {
		return decimal.Zero, nil
	}
	var item models.Account
	if err := tx.WithContext(ctx).
		Select("current_balance").
		Where("id = ?", accountID).
		First(&item).Error; err != nil {
		return decimal.Zero, err
	}
	return item.CurrentBalance, nil
}

func (s *Store) GetTrade(ctx context.Context, id uint64) (*models.Trade, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Trade
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetTradeScoped(ctx context.Context, userID, id uint64) (*models.Trade, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Trade
	err := s.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = trades.account_id").
		Where("trades.id = ? AND accounts.user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func applyTradeFilters(query *gorm.DB, params repository.ListTradesParams) *gorm.DB {
	query = query.
		Joins("JOIN accounts ON accounts.id = trades.account_id").
		Where("accounts.user_id = ?", params.UserID)
	if params.AccountID != nil {
		query = query.Where("trades.account_id = ?", *params.AccountID)
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("trades.symbol = ?", strings.TrimSpace(*params.Symbol))
	}
	if params.Side != nil && strings.TrimSpace(*params.Side) != "" {
		query = query.Where("trades.side = ?", strings.ToUpper(strings.TrimSpace(*params.Side)))
	}
	if params.SetupStrategyID != nil {
		query = query.Where("trades.setup_strategy_id = ?", *params.SetupStrategyID)
	}
	if params.EntryTypeID != nil {
		query = query.Where("trades.entry_type_id = ?", *params.EntryTypeID)
	}
	return query
}

func (s *Store) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyTradeFilters(s.db.WithContext(ctx).Model(&models.Trade{}), params)
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Trade
	if err := query.
		Order("trades.entry_date desc, trades.id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountTrades(ctx context.Context, params repository.ListTradesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyTradeFilters(s.db.WithContext(ctx).Model(&models.Trade{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListClosedTrades(ctx context.Context, params repository.ClosedTradesParams) ([]models.Trade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Trade{}).
		Joins("JOIN accounts ON accounts.id = trades.account_id").
		Where("accounts.user_id = ?", params.UserID).
		Where("trades.returns IS NOT NULL")
	if params.AccountID != nil {
		query = query.Where("trades.account_id = ?", *params.AccountID)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("trades.entry_date >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("trades.entry_date < ?", *params.Until)
	}
	var items []models.Trade
	if err := query.
		Preload("SetupStrategy").
		Order("trades.entry_date asc, trades.id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListEquityTrades(ctx context.Context, accountID uint64) ([]models.Trade, error) {
	if s == nil || s.db == nil || accountID == 0 {
		return nil, nil
	}
	var items []models.Trade
	if err := s.db.WithContext(ctx).
		Model(&models.Trade{}).
		Where("account_id = ?", accountID).
		Where("current_balance_after_trade IS NOT NULL").
		Order("entry_date asc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Setup strategies & entry types -----------------------------------------

func (s *Store) CreateSetupStrategy(ctx context.Context, item *models.SetupStrategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSetupStrategy(ctx context.Context, id uint64) (*models.SetupStrategy, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.SetupStrategy
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSetupStrategies(ctx context.Context, userID uint64) ([]models.SetupStrategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SetupStrategy
	if err := s.db.WithContext(ctx).
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateSetupStrategy(ctx context.Context, item *models.SetupStrategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteSetupStrategy(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	// Referencing trades keep the row; their link is cleared, not the trade.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Trade{}).
			Where("setup_strategy_id = ?", id).
			Update("setup_strategy_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.SetupStrategy{}).Error
	})
}

func (s *Store) CreateEntryType(ctx context.Context, item *models.EntryType) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetEntryType(ctx context.Context, id uint64) (*models.EntryType, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.EntryType
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListEntryTypes(ctx context.Context, userID uint64) ([]models.EntryType, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EntryType
	if err := s.db.WithContext(ctx).
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateEntryType(ctx context.Context, item *models.EntryType) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteEntryType(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Trade{}).
			Where("entry_type_id = ?", id).
			Update("entry_type_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.EntryType{}).Error
	})
}

// --- Documentation ----------------------------------------------------------

func (s *Store) GetOrCreateWidget(ctx context.Context, ownerKind string, ownerID uint64) (*models.DocumentationWidget, error) {
	if s == nil || s.db == nil || ownerID == 0 {
		return nil, nil
	}
	var item models.DocumentationWidget
	err := s.db.WithContext(ctx).
		Where(models.DocumentationWidget{OwnerKind: ownerKind, OwnerID: ownerID}).
		FirstOrCreate(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetWidget(ctx context.Context, id uint64) (*models.DocumentationWidget, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.DocumentationWidget
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListWidgets(ctx context.Context, ownerKind string, ownerID uint64) ([]models.DocumentationWidget, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.DocumentationWidget{})
	if ownerKind != "" && ownerID != 0 {
		query = query.Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID)
	}
	var items []models.DocumentationWidget
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order asc, id asc")
		}).
		Order("display_order asc, created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateDocItem(ctx context.Context, item *models.DocumentationItem) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) CreateDocItemTx(ctx context.Context, tx *gorm.DB, item *models.DocumentationItem) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) GetDocItem(ctx context.Context, id uint64) (*models.DocumentationItem, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.DocumentationItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListDocItems(ctx context.Context, ownerKind string, ownerID uint64) ([]models.DocumentationItem, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.DocumentationItem
	err := s.db.WithContext(ctx).
		Model(&models.DocumentationItem{}).
		Joins("JOIN documentation_widgets AS w ON w.id = documentation_items.widget_id").
		Where("w.owner_kind = ? AND w.owner_id = ?", ownerKind, ownerID).
		Order("documentation_items.display_order asc, documentation_items.id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MaxDocItemOrder(ctx context.Context, ownerKind string, ownerID uint64) (int, error) {
	if s == nil || s.db == nil {
		return -1, nil
	}
	var row struct {
		MaxOrder *int
	}
	err := s.db.WithContext(ctx).
		Model(&models.DocumentationItem{}).
		Select("MAX(documentation_items.display_order) AS max_order").
		Joins("JOIN documentation_widgets AS w ON w.id = documentation_items.widget_id").
		Where("w.owner_kind = ? AND w.owner_id = ?", ownerKind, ownerID).
		Scan(&row).Error
	if err != nil {
		return -1, err
	}
	if row.MaxOrder == nil {
		return -1, nil
	}
	return *row.MaxOrder, nil
}

func (s *Store) DeleteDocItem(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DocumentationItem{}).Error
}

func (s *Store) DeleteDocItemsForOwner(ctx context.Context, tx *gorm.DB, ownerKind string, ownerID uint64) error {
	if s == nil || ownerID == 0 {
		return nil
	}
	db := tx
	if db == nil {
		db = s.db.WithContext(ctx)
	}
	return db.
		Where("widget_id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&models.DocumentationWidget{}).
			Select("id").
			Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID)).
		Delete(&models.DocumentationItem{}).Error
}

// --- Audit ------------------------------------------------------------------

func (s *Store) InsertAuditLog(ctx context.Context, item *models.AuditLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAuditLogs(ctx context.Context, params repository.ListAuditLogsParams) ([]models.AuditLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Path != nil && strings.TrimSpace(*params.Path) != "" {
		query = query.Where("path = ?", strings.TrimSpace(*params.Path))
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.AuditLog
	if err := query.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
