// internal/domain/delivery/service.go
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-engine/internal/config"
	"gorm.io/gorm"
)

// Service handles digital asset delivery
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new delivery service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// DownloadGrant is the result of a successful download request
type DownloadGrant struct {
	Kind AssetKind `json:"kind"`
	// URL is set for file assets (signed) and link assets (pass-through)
	URL string `json:"url,omitempty"`
	// LicenseKey is set for license assets
	LicenseKey string `json:"license_key,omitempty"`
	ExpiresIn  int64  `json:"expires_in,omitempty"` // Seconds, for signed URLs
}

// GrantEntitlements creates entitlements for every digital asset attached to
// the ordered products. Idempotent per (user, asset) thanks to the unique
// index; an existing entitlement is left untouched.
func (s *Service) GrantEntitlements(tx *gorm.DB, userID, orderID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}

	var assets []DigitalAsset
	if err := tx.Where("product_id IN ?", productIDs).Find(&assets).Error; err != nil {
		return fmt.Errorf("failed to load digital assets: %w", err)
	}

	for _, asset := range assets {
		var existing Entitlement
		err := tx.Where("user_id = ? AND digital_asset_id = ?", userID, asset.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check entitlement: %w", err)
		}

		entitlement := Entitlement{
			UserID:         userID,
			DigitalAssetID: asset.ID,
			OrderID:        orderID,
		}
		if err := tx.Create(&entitlement).Error; err != nil {
			return fmt.Errorf("failed to create entitlement: %w", err)
		}
	}

	return nil
}

// RequestDownload checks the entitlement's ceilings, bumps its download
// counter and hands back a grant appropriate for the asset kind.
func (s *Service) RequestDownload(ctx context.Context, userID, entitlementID uint) (*DownloadGrant, error) {
	var entitlement Entitlement
	result := s.db.WithContext(ctx).
		Preload("Asset").
		Where("id = ? AND user_id = ?", entitlementID, userID).
		First(&entitlement)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("entitlement not found")
		}
		return nil, fmt.Errorf("failed to load entitlement: %w", result.Error)
	}

	asset := entitlement.Asset
	if asset.ExpiresAt != nil && time.Now().UTC().After(*asset.ExpiresAt) {
		return nil, fmt.Errorf("download window for this asset has closed")
	}
	if asset.MaxDownloads > 0 && entitlement.DownloadsCount >= asset.MaxDownloads {
		return nil, fmt.Errorf("download limit reached for this asset")
	}

	if err := s.db.WithContext(ctx).Model(&entitlement).
		UpdateColumn("downloads_count", gorm.Expr("downloads_count + ?", 1)).Error; err != nil {
		return nil, fmt.Errorf("failed to record download: %w", err)
	}

	grant := &DownloadGrant{Kind: asset.Kind}
	switch asset.Kind {
	case AssetKindFile:
		url, err := CreateSignedDownloadURL(
			asset.StorageKey,
			s.config.Delivery.BaseURL,
			s.config.Delivery.DownloadSecret,
			s.config.Delivery.DownloadTTL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to sign download URL: %w", err)
		}
		grant.URL = url
		grant.ExpiresIn = int64(s.config.Delivery.DownloadTTL.Seconds())
	case AssetKindLink:
		grant.URL = asset.StorageKey
	case AssetKindLicenseKey:
		grant.LicenseKey = asset.StorageKey
	default:
		return nil, fmt.Errorf("unknown asset kind: %s", asset.Kind)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"entitlement_id": entitlementID,
		"asset_kind":     asset.Kind,
	}).Info("Download granted")

	return grant, nil
}

// VerifyDelivery checks a presented signed URL against the configured secret
func (s *Service) VerifyDelivery(rawURL string) bool {
	return VerifySignedDownloadURL(rawURL, s.config.Delivery.DownloadSecret)
}

// ListEntitlements returns a user's entitlements with their assets
func (s *Service) ListEntitlements(ctx context.Context, userID uint) ([]Entitlement, error) {
	var entitlements []Entitlement
	if err := s.db.WithContext(ctx).
		Preload("Asset").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entitlements).Error; err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	return entitlements, nil
}
