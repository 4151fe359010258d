package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records write-method API requests for after-the-fact review.
type AuditLog struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint64 `gorm:"index" json:"user_id"`

	Method     string `gorm:"type:varchar(10);not null" json:"method"`
	Path       string `gorm:"type:varchar(200);not null;index" json:"path"`
	Status     int    `gorm:"not null" json:"status"`
	DurationMs int64  `gorm:"not null" json:"duration_ms"`

	Details datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
