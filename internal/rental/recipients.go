package rental

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/daeho/careops/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListRecipientsOptions struct {
	Search string // matches recipient name
	Limit  int
}

func (s *Service) ListRecipients(ctx context.Context, orgID uuid.UUID, opts ListRecipientsOptions) ([]models.Recipient, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipient{}).
		Where("organization_id = ?", orgID)

	// LTC numbers are ciphertext at rest, so search covers names only.
	if opts.Search != "" {
		q = q.Where("name LIKE ?", "%"+opts.Search+"%")
	}

	q = q.Order("created_at DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var recipients []models.Recipient
	if err := q.Find(&recipients).Error; err != nil {
		return nil, err
	}
	return recipients, nil
}

func (s *Service) GetRecipient(ctx context.Context, orgID, recipientID uuid.UUID) (*models.Recipient, error) {
	var recipient models.Recipient
	if err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", recipientID, orgID).
		First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return &recipient, nil
}

type CreateRecipientInput struct {
	Name       string
	LtcNumber  string
	CopayRate  int
	ExpiryDate *time.Time
}

func (s *Service) CreateRecipient(ctx context.Context, orgID uuid.UUID, input CreateRecipientInput) (*models.Recipient, error) {
	ltc, err := s.encryptor.EncryptString(input.LtcNumber)
	if err != nil {
		return nil, err
	}

	recipient := &models.Recipient{
		OrganizationID: orgID,
		Name:           input.Name,
		LtcNumber:      ltc,
		CopayRate:      input.CopayRate,
		LimitBalance:   models.DefaultLimitBalance,
		ExpiryDate:     input.ExpiryDate,
	}
	if err := s.db.WithContext(ctx).Create(recipient).Error; err != nil {
		return nil, err
	}

	s.logger.Info("recipient enrolled", "recipient_id", recipient.ID, "org_id", orgID)
	return recipient, nil
}

type UpdateRecipientInput struct {
	Name       *string
	LtcNumber  *string
	CopayRate  *int
	ExpiryDate *time.Time
}

// UpdateRecipient patches administrative fields. The limit balance is
// deliberately not reachable here; use TopUpLimit.
func (s *Service) UpdateRecipient(ctx context.Context, orgID, recipientID uuid.UUID, input UpdateRecipientInput) (*models.Recipient, error) {
	patch := map[string]interface{}{}
	if input.Name != nil {
		patch["name"] = *input.Name
	}
	if input.LtcNumber != nil {
		ltc, err := s.encryptor.EncryptString(*input.LtcNumber)
		if err != nil {
			return nil, err
		}
		patch["ltc_number"] = ltc
	}
	if input.CopayRate != nil {
		patch["copay_rate"] = *input.CopayRate
	}
	if input.ExpiryDate != nil {
		patch["expiry_date"] = *input.ExpiryDate
	}

	if len(patch) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Recipient{}).
			Where("id = ? AND organization_id = ?", recipientID, orgID).
			Updates(patch)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrRecipientNotFound
		}
	}

	return s.GetRecipient(ctx, orgID, recipientID)
}

// TopUpLimit is the administrative allowance increase, serialized on
// the recipient row and separate from settlement.
func (s *Service) TopUpLimit(ctx context.Context, orgID, recipientID uuid.UUID, amount int64) (*models.Recipient, error) {
	if err := s.ledger.TopUp(s.db.WithContext(ctx), orgID, recipientID, amount); err != nil {
		return nil, err
	}
	s.logger.Info("limit topped up", "recipient_id", recipientID, "org_id", orgID, "amount", amount)
	return s.GetRecipient(ctx, orgID, recipientID)
}

// RecipientBalance is the read surface the order form needs before
// settlement: the remaining allowance and the co-pay rate.
type RecipientBalance struct {
	LimitBalance int64 `json:"limit_balance"`
	CopayRate    int   `json:"copay_rate"`
}

func (s *Service) GetRecipientBalance(ctx context.Context, orgID, recipientID uuid.UUID) (*RecipientBalance, error) {
	recipient, err := s.GetRecipient(ctx, orgID, recipientID)
	if err != nil {
		return nil, err
	}
	return &RecipientBalance{
		LimitBalance: recipient.LimitBalance,
		CopayRate:    recipient.CopayRate,
	}, nil
}

// MaskedLtcNumber decrypts a recipient's LTC number and masks all but
// the leading four characters for display.
func (s *Service) MaskedLtcNumber(r *models.Recipient) (string, error) {
	plain, err := s.encryptor.DecryptString(r.LtcNumber)
	if err != nil {
		return "", err
	}
	if len(plain) <= 4 {
		return strings.Repeat("*", len(plain)), nil
	}
	return plain[:4] + strings.Repeat("*", len(plain)-4), nil
}
