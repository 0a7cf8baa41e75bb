package rental

import (
	"github.com/daeho/careops/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger guards a recipient's annual limit balance. It only enforces
// and mutates the balance; amount computation belongs to the
// settlement coordinator.
type Ledger struct{}

// Check is the advisory pre-check against an already-loaded recipient
// row. The authoritative check is the balance predicate inside Reserve;
// Check exists to compute the shortfall for user-facing messaging.
func (Ledger) Check(r *models.Recipient, copayAmount int64) error {
	if r.LimitBalance < copayAmount {
		return &LimitExceededError{
			LimitBalance: r.LimitBalance,
			CopayAmount:  copayAmount,
			Shortfall:    copayAmount - r.LimitBalance,
		}
	}
	return nil
}

// Reserve deducts copayAmount from the recipient's balance inside the
// caller's transaction. The UPDATE re-evaluates the balance predicate
// under the row lock, so a balance that changed since the advisory
// Check cannot be pushed negative; zero rows affected after a passing
// Check means a concurrent writer got there first.
func (Ledger) Reserve(tx *gorm.DB, orgID, recipientID uuid.UUID, copayAmount int64) error {
	res := tx.Model(&models.Recipient{}).
		Where("id = ? AND organization_id = ? AND limit_balance >= ?",
			recipientID, orgID, copayAmount).
		Update("limit_balance", gorm.Expr("limit_balance - ?", copayAmount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// TopUp is the administrative balance increase. It is a single atomic
// increment, serialized on the row like Reserve, and deliberately not
// part of the settlement unit of work.
func (Ledger) TopUp(db *gorm.DB, orgID, recipientID uuid.UUID, amount int64) error {
	res := db.Model(&models.Recipient{}).
		Where("id = ? AND organization_id = ?", recipientID, orgID).
		Update("limit_balance", gorm.Expr("limit_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}
