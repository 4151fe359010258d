package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

const (
	TradeStatusOpen      = "OPEN"
	TradeStatusWin       = "WIN"
	TradeStatusLoss      = "LOSS"
	TradeStatusBreakeven = "BREAKEVEN"
)

// Trade is one journaled position. Returns is the realized P&L; nil means
// the position is still open. Duration is a manually entered free-text
// field, never derived from timestamps.
type Trade struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint64 `gorm:"not null;index" json:"account_id"`

	Account *Account `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Symbol     string          `gorm:"type:varchar(20);not null;index" json:"symbol"`
	EntryDate  time.Time       `gorm:"type:timestamptz;not null;index" json:"entry_date"`
	EntryPrice decimal.Decimal `gorm:"type:numeric(12,5);not null" json:"entry_price"`
	ExitPrice  *decimal.Decimal `gorm:"type:numeric(12,5)" json:"exit_price,omitempty"`
	Size       decimal.Decimal `gorm:"type:numeric(12,5);not null" json:"size"`
	Side       string          `gorm:"type:varchar(4);not null;index" json:"side"`
	Duration   string          `gorm:"type:varchar(100)" json:"duration,omitempty"`

	Returns                  *decimal.Decimal `gorm:"type:numeric(12,2)" json:"returns,omitempty"`
	CurrentBalanceAfterTrade *decimal.Decimal `gorm:"type:numeric(12,2)" json:"current_balance_after_trade,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	SetupStrategyID *uint64 `gorm:"index" json:"setup_strategy_id,omitempty"`
	EntryTypeID     *uint64 `gorm:"index" json:"entry_type_id,omitempty"`

	SetupStrategy *SetupStrategy `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	EntryType     *EntryType     `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}

// MarshalJSON includes the derived status so clients never recompute it.
func (t Trade) MarshalJSON() ([]byte, error) {
	type alias Trade
	return json.Marshal(struct {
		alias
		Status string `json:"status"`
	}{alias(t), t.Status()})
}

// Status derives the trade state from realized P&L.
func (t Trade) Status() string {
	if t.Returns == nil {
		return TradeStatusOpen
	}
	switch t.Returns.Sign() {
	case 1:
		return TradeStatusWin
	case -1:
		return TradeStatusLoss
	default:
		return TradeStatusBreakeven
	}
}
