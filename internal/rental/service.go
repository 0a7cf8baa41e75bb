package rental

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/daeho/careops/internal/database/models"
	"github.com/daeho/careops/pkg/crypto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns the rental domain: order settlement, the limit ledger
// and the asset lifecycle. Every method takes the caller's organization
// id as its first argument after the context; there is no way to reach
// tenant-scoped rows through this package without one.
type Service struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
	logger    *slog.Logger
	ledger    Ledger
}

func NewService(db *gorm.DB, encryptor *crypto.Encryptor, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		encryptor: encryptor,
		logger:    logger,
	}
}

// SettleItem is one requested order line. Price is the amount at time
// of order; it is persisted as a snapshot, not re-read from the
// catalog later.
type SettleItem struct {
	AssetID   *uuid.UUID
	ProductID *uuid.UUID
	Price     int64
}

type SettleOrderInput struct {
	RecipientID uuid.UUID
	UserID      *uuid.UUID
	OrderDate   time.Time // zero value means today
	Items       []SettleItem
}

// copayFor computes the recipient's share of total, floored to the
// won. The fee schedule mentions 10-won truncation but the billing
// system has always floored to the won; changing it would shift
// already-settled splits.
func copayFor(total int64, rate int) int64 {
	return total * int64(rate) / 100
}

// SettleOrder is the top-level settlement transaction: it verifies the
// recipient, computes the co-pay/claim split, reserves limit balance,
// persists the order with its items and rents every asset-backed line,
// all inside one unit of work. A ledger conflict with a concurrent
// settlement is retried once with recomputed amounts; any other
// failure aborts with no partial effect.
func (s *Service) SettleOrder(ctx context.Context, orgID uuid.UUID, input SettleOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Price < 0 || (item.AssetID == nil && item.ProductID == nil) {
			return nil, ErrInvalidItem
		}
	}

	order, err := s.settleOnce(ctx, orgID, input)
	if errors.Is(err, ErrConflict) {
		s.logger.Warn("settlement conflict, retrying once",
			"org_id", orgID,
			"recipient_id", input.RecipientID,
		)
		order, err = s.settleOnce(ctx, orgID, input)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order settled",
		"order_id", order.ID,
		"org_id", orgID,
		"recipient_id", order.RecipientID,
		"total", order.TotalAmount,
		"copay", order.CopayAmount,
		"claim", order.ClaimAmount,
	)

	return order, nil
}

func (s *Service) settleOnce(ctx context.Context, orgID uuid.UUID, input SettleOrderInput) (*models.Order, error) {
	var order *models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipient models.Recipient
		if err := tx.Where("id = ? AND organization_id = ?", input.RecipientID, orgID).
			First(&recipient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientNotFound
			}
			return err
		}

		var total int64
		for _, item := range input.Items {
			total += item.Price
		}
		copay := copayFor(total, recipient.CopayRate)
		claim := total - copay

		if err := s.ledger.Check(&recipient, copay); err != nil {
			return err
		}
		if err := s.ledger.Reserve(tx, orgID, recipient.ID, copay); err != nil {
			return err
		}

		orderDate := input.OrderDate
		if orderDate.IsZero() {
			orderDate = time.Now()
		}

		order = &models.Order{
			OrganizationID: orgID,
			RecipientID:    recipient.ID,
			UserID:         input.UserID,
			TotalAmount:    total,
			CopayAmount:    copay,
			ClaimAmount:    claim,
			OrderDate:      orderDate,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range input.Items {
			if item.ProductID != nil {
				var count int64
				if err := tx.Model(&models.Product{}).
					Where("id = ?", *item.ProductID).
					Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return ErrProductNotFound
				}
			}

			line := models.OrderItem{
				OrderID:   order.ID,
				AssetID:   item.AssetID,
				ProductID: item.ProductID,
				Price:     item.Price,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, line)

			if item.AssetID != nil {
				if err := rentAsset(tx, orgID, *item.AssetID, recipient.ID); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
