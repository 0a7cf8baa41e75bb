package rental

import (
	"context"
	"errors"

	"github.com/daeho/careops/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListAssetsOptions struct {
	Status models.AssetStatus // empty means all statuses
	Search string             // matches product name, serial number or QR code
	Limit  int
}

func (s *Service) ListAssets(ctx context.Context, orgID uuid.UUID, opts ListAssetsOptions) ([]models.Asset, error) {
	q := s.db.WithContext(ctx).Model(&models.Asset{}).
		Where("assets.organization_id = ?", orgID)

	if opts.Status != "" {
		q = q.Where("assets.status = ?", opts.Status)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		q = q.Joins("LEFT JOIN products ON products.id = assets.product_id").
			Where("products.name LIKE ? OR assets.serial_number LIKE ? OR assets.qr_code LIKE ?",
				pattern, pattern, pattern)
	}

	q = q.Order("assets.updated_at DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var assets []models.Asset
	if err := q.Preload("Product").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *Service) GetAsset(ctx context.Context, orgID, assetID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", assetID, orgID).
		Preload("Product").
		First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

type CreateAssetInput struct {
	ProductID    *uuid.UUID
	SerialNumber string
	QRCode       string
}

func (s *Service) CreateAsset(ctx context.Context, orgID uuid.UUID, input CreateAssetInput) (*models.Asset, error) {
	if input.ProductID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", *input.ProductID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrProductNotFound
		}
	}

	asset := &models.Asset{
		OrganizationID: orgID,
		ProductID:      input.ProductID,
		SerialNumber:   input.SerialNumber,
		QRCode:         input.QRCode,
		Status:         models.AssetStatusAvailable,
	}
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}

	s.logger.Info("asset registered", "asset_id", asset.ID, "org_id", orgID, "qr_code", asset.QRCode)
	return asset, nil
}

// TransitionAsset performs a caller-requested lifecycle transition
// (return, sanitation completion or write-off) and returns the updated
// asset. Renting is not reachable here; it happens only inside order
// settlement.
func (s *Service) TransitionAsset(ctx context.Context, orgID, assetID uuid.UUID, to models.AssetStatus) (*models.Asset, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyTransition(tx, orgID, assetID, to)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset transitioned", "asset_id", assetID, "org_id", orgID, "to", to)
	return s.GetAsset(ctx, orgID, assetID)
}
