// internal/domain/delivery/entity.go
package delivery

import (
	"time"

	"gorm.io/gorm"
)

// AssetKind represents how a digital asset is delivered
type AssetKind string

const (
	AssetKindFile       AssetKind = "file"
	AssetKindLink       AssetKind = "link"
	AssetKindLicenseKey AssetKind = "license_key"
)

// DigitalAsset represents a deliverable digital good
type DigitalAsset struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProductID    uint           `gorm:"not null;index" json:"product_id"`
	Kind         AssetKind      `gorm:"not null;size:16" json:"kind"`
	StorageKey   string         `gorm:"not null;size:500" json:"storage_key"` // File key, external URL, or license payload
	MaxDownloads int            `gorm:"not null;default:0" json:"max_downloads"` // 0 means unlimited
	ExpiresAt    *time.Time     `json:"expires_at"`                              // Entitlements stop working past this
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Entitlement binds an asset to a user and tracks remaining allowance
type Entitlement struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	DigitalAssetID uint           `gorm:"not null;index" json:"digital_asset_id"`
	OrderID        uint           `gorm:"not null;index" json:"order_id"`
	DownloadsCount int            `gorm:"not null;default:0" json:"downloads_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Asset DigitalAsset `gorm:"foreignKey:DigitalAssetID" json:"asset"`
}

// TableName overrides
func (DigitalAsset) TableName() string { return "digital_assets" }
func (Entitlement) TableName() string  { return "entitlements" }
