package models

import "time"

const (
	DocItemText  = "TEXT"
	DocItemImage = "IMAGE"
)

// DocumentationWidget is the attachment point linking an owner entity
// (account, trade, setup strategy or entry type) to its ordered content
// blocks. One widget per (owner_kind, owner_id) pair, created lazily the
// first time an item is attached.
type DocumentationWidget struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerKind string `gorm:"type:varchar(20);not null;index:idx_doc_widget_owner" json:"owner_kind"`
	OwnerID   uint64 `gorm:"not null;index:idx_doc_widget_owner" json:"owner_id"`
	Order     int    `gorm:"column:display_order;not null;default:0" json:"order"`

	Items []DocumentationItem `gorm:"foreignKey:WidgetID" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (DocumentationWidget) TableName() string {
	return "documentation_widgets"
}

// DocumentationItem is one content block. Exactly one of TextContent and
// ImageURL is set, matching ItemType.
type DocumentationItem struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	WidgetID uint64 `gorm:"not null;index" json:"widget_id"`

	Widget *DocumentationWidget `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	ItemType    string  `gorm:"type:varchar(10);not null" json:"item_type"`
	TextContent *string `gorm:"type:text" json:"text_content,omitempty"`
	ImageURL    *string `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Order       int     `gorm:"column:display_order;not null;default:0" json:"order"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (DocumentationItem) TableName() string {
	return "documentation_items"
}
