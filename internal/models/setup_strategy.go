package models

import "time"

// SetupStrategy is a named trade setup. A nil UserID marks a public
// strategy: visible to every user, writable by none.
type SetupStrategy struct {
	ID     uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID *uint64 `gorm:"index" json:"user_id,omitempty"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (SetupStrategy) TableName() string {
	return "setup_strategies"
}
