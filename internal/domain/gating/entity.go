// internal/domain/gating/entity.go
package gating

import (
	"time"

	"gorm.io/gorm"
)

// Rule gates purchase/download of a product or category behind an external
// guild membership, optionally narrowed to a role within that guild.
// Gating is opt-in: targets without a rule are open to everyone.
type Rule struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProductID  *uint          `gorm:"index" json:"product_id"`
	CategoryID *uint          `gorm:"index" json:"category_id"`
	GuildID    string         `gorm:"not null;size:32" json:"guild_id"`
	RoleID     string         `gorm:"size:32" json:"role_id"` // Empty means membership alone suffices
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Rule) TableName() string { return "gating_rules" }

// Decision is the outcome of an access gating evaluation
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	BlockedItems []uint `json:"blocked_items,omitempty"` // Product IDs
}

// Item is the minimal line-item view the evaluator needs
type Item struct {
	ProductID  uint
	CategoryID uint
}
