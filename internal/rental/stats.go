package rental

import (
	"context"
	"time"

	"github.com/daeho/careops/internal/database/models"
	"github.com/google/uuid"
)

// DashboardStats are the read-only aggregates the operator dashboard
// shows: what will be claimed this month, how much equipment is
// waiting on sanitation, and which certifications expire soon.
type DashboardStats struct {
	MonthlyClaimAmount int64 `json:"monthly_claim_amount"`
	SanitizingCount    int64 `json:"sanitizing_count"`
	ExpiringRecipients int64 `json:"expiring_recipients"`
}

func (s *Service) GetDashboardStats(ctx context.Context, orgID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("organization_id = ? AND order_date >= ?", orgID, startOfMonth).
		Select("COALESCE(SUM(claim_amount), 0)").
		Scan(&stats.MonthlyClaimAmount).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Asset{}).
		Where("organization_id = ? AND status = ?", orgID, models.AssetStatusSanitizing).
		Count(&stats.SanitizingCount).Error; err != nil {
		return nil, err
	}

	weekOut := now.AddDate(0, 0, 7)
	if err := s.db.WithContext(ctx).Model(&models.Recipient{}).
		Where("organization_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", orgID, weekOut).
		Count(&stats.ExpiringRecipients).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
