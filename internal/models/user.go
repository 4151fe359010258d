package models

import "time"

type User struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`

	SaltHex     string `gorm:"type:varchar(64);not null" json:"-"`
	PassHashHex string `gorm:"type:varchar(64);not null" json:"-"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
