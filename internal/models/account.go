package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a trading account. CurrentBalance always equals
// InitialBalance plus the sum of realized P&L across the account's trades;
// the ledger service maintains that incrementally inside the trade-write
// transaction.
type Account struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint64 `gorm:"not null;index" json:"user_id"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	InitialBalance decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"initial_balance"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"current_balance"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
