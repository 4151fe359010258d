package models

import "time"

// EntryType categorizes how a position was entered. Same public/owned
// semantics as SetupStrategy.
type EntryType struct {
	ID     uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID *uint64 `gorm:"index" json:"user_id,omitempty"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (EntryType) TableName() string {
	return "entry_types"
}
