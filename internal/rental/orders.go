package rental

import (
	"context"
	"errors"

	"github.com/daeho/careops/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Service) ListOrders(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Preload("Recipient").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, orgID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", orderID, orgID).
		Preload("Recipient").
		Preload("Items").
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
