package models

import "time"

// AuthToken stores the sha256 digest of an issued bearer token. The raw
// token is returned to the client once and never persisted.
type AuthToken struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"not null;index" json:"user_id"`
	TokenHash string `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt  time.Time  `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	LastUsedAt *time.Time `gorm:"type:timestamptz" json:"last_used_at,omitempty"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
