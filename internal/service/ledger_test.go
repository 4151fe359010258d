package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	gormrepository "tradejournal/internal/repository/gorm"
)

// newTestStore opens a fresh in-memory database per test for isolation.
func newTestStore(t *testing.T) *gormrepository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.Account{},
		&models.SetupStrategy{},
		&models.EntryType{},
		&models.Trade{},
		&models.DocumentationWidget{},
		&models.DocumentationItem{},
		&models.AuditLog{},
	)
	assert.NoError(t, err)
	return gormrepository.New(db)
}

func newTestUser(t *testing.T, store *gormrepository.Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, SaltHex: "00", PassHashHex: "00"}
	assert.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func newTestAccount(t *testing.T, ledger *LedgerService, userID uint64, balance int64) *models.Account {
	t.Helper()
	account, err := ledger.CreateAccount(context.Background(), userID, CreateAccountInput{
		Name:           "main",
		InitialBalance: decimal.NewFromInt(balance),
	})
	assert.NoError(t, err)
	return account
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func closedTrade(accountID uint64, entry time.Time, returns int64) CreateTradeInput {
	return CreateTradeInput{
		AccountID:  accountID,
		Symbol:     "EURUSD",
		EntryDate:  entry,
		EntryPrice: decimal.NewFromFloat(1.1),
		Size:       decimal.NewFromInt(1),
		Side:       "BUY",
		Returns:    decPtr(returns),
	}
}

func TestCreateTradeAdjustsBalance(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	trade, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), 50))
	assert.NoError(t, err)
	assert.Equal(t, models.TradeStatusWin, trade.Status())
	assert.NotNil(t, trade.CurrentBalanceAfterTrade)
	assert.True(t, trade.CurrentBalanceAfterTrade.Equal(dec(1050)), trade.CurrentBalanceAfterTrade.String())

	got, err := ledger.GetAccount(context.Background(), user.ID, account.ID)
	assert.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec(1050)), got.CurrentBalance.String())
}

func TestCreateOpenTradeLeavesBalance(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	in := closedTrade(account.ID, time.Now().UTC(), 0)
	in.Returns = nil
	trade, err := ledger.CreateTrade(context.Background(), user.ID, in)
	assert.NoError(t, err)
	assert.Equal(t, models.TradeStatusOpen, trade.Status())

	got, err := ledger.GetAccount(context.Background(), user.ID, account.ID)
	assert.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec(1000)), got.CurrentBalance.String())
}

func TestUpdateTradeReappliesDelta(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	trade, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Now().UTC(), 50))
	assert.NoError(t, err)

	// 50 -> -20 means the account moves by -70 overall.
	updated, err := ledger.UpdateTrade(context.Background(), user.ID, trade.ID,
		UpdateTradeInput{Returns: decPtr(-20)})
	assert.NoError(t, err)
	assert.True(t, updated.CurrentBalanceAfterTrade.Equal(dec(980)), updated.CurrentBalanceAfterTrade.String())

	got, err := ledger.GetAccount(context.Background(), user.ID, account.ID)
	assert.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec(980)), got.CurrentBalance.String())
}

func TestClearReturnsReopensTrade(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	trade, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Now().UTC(), 50))
	assert.NoError(t, err)

	updated, err := ledger.UpdateTrade(context.Background(), user.ID, trade.ID,
		UpdateTradeInput{ClearReturns: true})
	assert.NoError(t, err)
	assert.Equal(t, models.TradeStatusOpen, updated.Status())

	got, err := ledger.GetAccount(context.Background(), user.ID, account.ID)
	assert.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec(1000)), got.CurrentBalance.String())
}

func TestDeleteTradeRestoresBalance(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	trade, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Now().UTC(), -75))
	assert.NoError(t, err)

	assert.NoError(t, ledger.DeleteTrade(context.Background(), user.ID, trade.ID))

	got, err := ledger.GetAccount(context.Background(), user.ID, account.ID)
	assert.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec(1000)), got.CurrentBalance.String())

	_, err = ledger.GetTrade(context.Background(), user.ID, trade.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTradeScopedToOwner(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	account := newTestAccount(t, ledger, alice.ID, 1000)

	trade, err := ledger.CreateTrade(context.Background(), alice.ID,
		closedTrade(account.ID, time.Now().UTC(), 10))
	assert.NoError(t, err)

	_, err = ledger.GetTrade(context.Background(), bob.ID, trade.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = ledger.UpdateTrade(context.Background(), bob.ID, trade.ID,
		UpdateTradeInput{Returns: decPtr(999)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = ledger.DeleteTrade(context.Background(), bob.ID, trade.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateTradeValidation(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	in := closedTrade(account.ID, time.Now().UTC(), 0)
	in.Side = "HOLD"
	_, err := ledger.CreateTrade(context.Background(), user.ID, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in = closedTrade(account.ID, time.Now().UTC(), 0)
	in.Symbol = "  "
	_, err = ledger.CreateTrade(context.Background(), user.ID, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in = closedTrade(999, time.Now().UTC(), 0)
	_, err = ledger.CreateTrade(context.Background(), user.ID, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateTradeRejectsForeignStrategy(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	catalog := &CatalogService{Repo: store}
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	account := newTestAccount(t, ledger, alice.ID, 1000)

	foreign, err := catalog.CreateSetupStrategy(context.Background(), bob.ID,
		CatalogItemInput{Name: "breakout"})
	assert.NoError(t, err)

	in := closedTrade(account.ID, time.Now().UTC(), 10)
	in.SetupStrategyID = &foreign.ID
	_, err = ledger.CreateTrade(context.Background(), alice.ID, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Public strategies are linkable by anyone.
	public := &models.SetupStrategy{Name: "trend"}
	assert.NoError(t, store.CreateSetupStrategy(context.Background(), public))
	in.SetupStrategyID = &public.ID
	_, err = ledger.CreateTrade(context.Background(), alice.ID, in)
	assert.NoError(t, err)
}

func TestBalanceDriftDetection(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	_, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Now().UTC(), 50))
	assert.NoError(t, err)

	drifts, err := store.ListBalanceDrifts(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, drifts)

	// Corrupt the stored balance behind the ledger's back.
	account.CurrentBalance = dec(9999)
	assert.NoError(t, store.UpdateAccount(context.Background(), account))

	drifts, err = store.ListBalanceDrifts(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, drifts, 1) {
		assert.Equal(t, account.ID, drifts[0].AccountID)
		assert.True(t, drifts[0].Expected.Equal(dec(1050)), drifts[0].Expected.String())
	}
	assert.NoError(t, ledger.AuditBalances(context.Background()))
}

func TestDeleteAccountRemovesTrades(t *testing.T) {
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	trade, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Now().UTC(), 10))
	assert.NoError(t, err)

	assert.NoError(t, ledger.DeleteAccount(context.Background(), user.ID, account.ID))

	_, err = ledger.GetAccount(context.Background(), user.ID, account.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	got, err := store.GetTrade(context.Background(), trade.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
