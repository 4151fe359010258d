package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

// LedgerService owns every write path that touches account balances. A
// trade mutation and its balance adjustment always run inside one
// transaction; the account invariant
//
//	current_balance == initial_balance + sum(returns)
//
// is not self-healing, so there is no code path that mutates a trade's
// returns outside these functions.
type LedgerService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type CreateAccountInput struct {
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type UpdateAccountInput struct {
	Name           *string          `json:"name"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
}

func (s *LedgerService) CreateAccount(ctx context.Context, userID uint64, in CreateAccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if in.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial_balance must be non-negative", apperr.ErrValidation)
	}
	item := &models.Account{
		UserID:         userID,
		Name:           name,
		InitialBalance: in.InitialBalance,
		CurrentBalance: in.InitialBalance,
	}
	if err := s.Repo.CreateAccount(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, userID, id uint64) (*models.Account, error) {
	item, err := s.Repo.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	return item, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context, userID uint64) ([]models.Account, error) {
	return s.Repo.ListAccounts(ctx, userID)
}

func (s *LedgerService) UpdateAccount(ctx context.Context, userID, id uint64, in UpdateAccountInput) (*models.Account, error) {
	item, err := s.Repo.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperr.ErrValidation)
		}
		item.Name = name
	}
	if in.InitialBalance != nil {
		if in.InitialBalance.IsNegative() {
			return nil, fmt.Errorf("%w: initial_balance must be non-negative", apperr.ErrValidation)
		}
		item.InitialBalance = *in.InitialBalance
	}
	if in.CurrentBalance != nil {
		// Direct balance edit is allowed; the invariant is re-anchored here.
		item.CurrentBalance = *in.CurrentBalance
	}
	if err := s.Repo.UpdateAccount(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *LedgerService) DeleteAccount(ctx context.Context, userID, id uint64) error {
	item, err := s.Repo.GetAccount(ctx, userID, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.ErrNotFound
	}
	return s.Repo.DeleteAccount(ctx, userID, id)
}

type CreateTradeInput struct {
	AccountID       uint64           `json:"account_id"`
	Symbol          string           `json:"symbol"`
	EntryDate       time.Time        `json:"entry_date"`
	EntryPrice      decimal.Decimal  `json:"entry_price"`
	ExitPrice       *decimal.Decimal `json:"exit_price"`
	Size            decimal.Decimal  `json:"size"`
	Side            string           `json:"side"`
	Duration        string           `json:"duration"`
	Returns         *decimal.Decimal `json:"returns"`
	Notes           string           `json:"notes"`
	SetupStrategyID *uint64          `json:"setup_strategy_id"`
	EntryTypeID     *uint64          `json:"entry_type_id"`
}

type UpdateTradeInput struct {
	Symbol          *string          `json:"symbol"`
	EntryDate       *time.Time       `json:"entry_date"`
	EntryPrice      *decimal.Decimal `json:"entry_price"`
	ExitPrice       *decimal.Decimal `json:"exit_price"`
	Size            *decimal.Decimal `json:"size"`
	Side            *string          `json:"side"`
	Duration        *string          `json:"duration"`
	Returns         *decimal.Decimal `json:"returns"`
	ClearReturns    bool             `json:"clear_returns"`
	Notes           *string          `json:"notes"`
	SetupStrategyID *uint64          `json:"setup_strategy_id"`
	EntryTypeID     *uint64          `json:"entry_type_id"`
}

func normalizeSide(raw string) (string, error) {
	side := strings.ToUpper(strings.TrimSpace(raw))
	if side != models.SideBuy && side != models.SideSell {
		return "", fmt.Errorf("%w: side must be BUY or SELL", apperr.ErrValidation)
	}
	return side, nil
}

func coalesce(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func (s *LedgerService) checkStrategyRefs(ctx context.Context, userID uint64, strategyID, entryTypeID *uint64) error {
	if strategyID != nil {
		item, err := s.Repo.GetSetupStrategy(ctx, *strategyID)
		if err != nil {
			return err
		}
		if item == nil || (item.UserID != nil && *item.UserID != userID) {
			return fmt.Errorf("%w: setup_strategy_id", apperr.ErrValidation)
		}
	}
	if entryTypeID != nil {
		item, err := s.Repo.GetEntryType(ctx, *entryTypeID)
		if err != nil {
			return err
		}
		if item == nil || (item.UserID != nil && *item.UserID != userID) {
			return fmt.Errorf("%w: entry_type_id", apperr.ErrValidation)
		}
	}
	return nil
}

func (s *LedgerService) CreateTrade(ctx context.Context, userID uint64, in CreateTradeInput) (*models.Trade, error) {
	account, err := s.Repo.GetAccount(ctx, userID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.ErrNotFound
	}
	side, err := normalizeSide(in.Side)
	if err != nil {
		return nil, err
	}
	symbol := strings.TrimSpace(in.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", apperr.ErrValidation)
	}
	if in.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry_date is required", apperr.ErrValidation)
	}
	if err := s.checkStrategyRefs(ctx, userID, in.SetupStrategyID, in.EntryTypeID); err != nil {
		return nil, err
	}

	trade := &models.Trade{
		AccountID:       in.AccountID,
		Symbol:          symbol,
		EntryDate:       in.EntryDate.UTC(),
		EntryPrice:      in.EntryPrice,
		ExitPrice:       in.ExitPrice,
		Size:            in.Size,
		Side:            side,
		Duration:        strings.TrimSpace(in.Duration),
		Returns:         in.Returns,
		Notes:           in.Notes,
		SetupStrategyID: in.SetupStrategyID,
		EntryTypeID:     in.EntryTypeID,
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		delta := coalesce(in.Returns)
		if err := s.Repo.AdjustAccountBalanceTx(ctx, tx, in.AccountID, delta); err != nil {
			return err
		}
		balance, err := s.Repo.GetAccountBalanceTx(ctx, tx, in.AccountID)
		if err != nil {
			return err
		}
		trade.CurrentBalanceAfterTrade = &balance
		return s.Repo.CreateTradeTx(ctx, tx, trade)
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

func (s *LedgerService) GetTrade(ctx context.Context, userID, id uint64) (*models.Trade, error) {
	item, err := s.Repo.GetTradeScoped(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	return item, nil
}

func (s *LedgerService) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, int64, error) {
	items, err := s.Repo.ListTrades(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountTrades(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *LedgerService) UpdateTrade(ctx context.Context, userID, id uint64, in UpdateTradeInput) (*models.Trade, error) {
	trade, err := s.Repo.GetTradeScoped(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperr.ErrNotFound
	}
	if err := s.checkStrategyRefs(ctx, userID, in.SetupStrategyID, in.EntryTypeID); err != nil {
		return nil, err
	}

	oldReturns := coalesce(trade.Returns)

	if in.Symbol != nil {
		symbol := strings.TrimSpace(*in.Symbol)
		if symbol == "" {
			return nil, fmt.Errorf("%w: symbol cannot be empty", apperr.ErrValidation)
		}
		trade.Symbol = symbol
	}
	if in.EntryDate != nil {
		trade.EntryDate = in.EntryDate.UTC()
	}
	if in.EntryPrice != nil {
		trade.EntryPrice = *in.EntryPrice
	}
	if in.ExitPrice != nil {
		trade.ExitPrice = in.ExitPrice
	}
	if in.Size != nil {
		trade.Size = *in.Size
	}
	if in.Side != nil {
		side, err := normalizeSide(*in.Side)
		if err != nil {
			return nil, err
		}
		trade.Side = side
	}
	if in.Duration != nil {
		trade.Duration = strings.TrimSpace(*in.Duration)
	}
	if in.ClearReturns {
		trade.Returns = nil
	} else if in.Returns != nil {
		trade.Returns = in.Returns
	}
	if in.Notes != nil {
		trade.Notes = *in.Notes
	}
	if in.SetupStrategyID != nil {
		trade.SetupStrategyID = in.SetupStrategyID
	}
	if in.EntryTypeID != nil {
		trade.EntryTypeID = in.EntryTypeID
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		delta := coalesce(trade.Returns).Sub(oldReturns)
		if err := s.Repo.AdjustAccountBalanceTx(ctx, tx, trade.AccountID, delta); err != nil {
			return err
		}
		balance, err := s.Repo.GetAccountBalanceTx(ctx, tx, trade.AccountID)
		if err != nil {
			return err
		}
		trade.CurrentBalanceAfterTrade = &balance
		return s.Repo.SaveTradeTx(ctx, tx, trade)
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

func (s *LedgerService) DeleteTrade(ctx context.Context, userID, id uint64) error {
	trade, err := s.Repo.GetTradeScoped(ctx, userID, id)
	if err != nil {
		return err
	}
	if trade == nil {
		return apperr.ErrNotFound
	}
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		delta := coalesce(trade.Returns).Neg()
		if err := s.Repo.AdjustAccountBalanceTx(ctx, tx, trade.AccountID, delta); err != nil {
			return err
		}
		return s.Repo.DeleteTradeTx(ctx, tx, id)
	})
}

// AuditBalances recomputes every account's expected balance and logs any
// drift. Runs from cron; read-only, reporting only.
func (s *LedgerService) AuditBalances(ctx context.Context) error {
	drifts, err := s.Repo.ListBalanceDrifts(ctx)
	if err != nil {
		return err
	}
	for _, d := range drifts {
		if s.Logger != nil {
			s.Logger.Warn("account balance drift",
				zap.Uint64("account_id", d.AccountID),
				zap.String("stored", d.Stored.String()),
				zap.String("expected", d.Expected.String()),
			)
		}
	}
	if len(drifts) == 0 && s.Logger != nil {
		s.Logger.Debug("balance audit clean")
	}
	return nil
}
