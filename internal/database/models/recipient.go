package models

import (
	"time"

	"github.com/google/uuid"
)

// Co-pay rates fixed by the national long-term-care fee schedule.
var ValidCopayRates = []int{0, 6, 9, 15}

// DefaultLimitBalance is the annual spending allowance granted to a
// recipient on enrollment, in won.
const DefaultLimitBalance int64 = 1_600_000

type Recipient struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	Name           string    `gorm:"not null" json:"name"`

	// Long-term-care certification number, encrypted at rest with age.
	// The column holds base64 ciphertext; handlers expose a masked form.
	LtcNumber string `gorm:"column:ltc_number;not null" json:"-"`

	CopayRate    int        `gorm:"not null" json:"copay_rate"`
	LimitBalance int64      `gorm:"not null;default:1600000" json:"limit_balance"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Orders       []Order       `gorm:"foreignKey:RecipientID" json:"-"`
}

func (Recipient) TableName() string {
	return "recipients"
}

// IsValidCopayRate reports whether rate is one of the fee-schedule rates.
func IsValidCopayRate(rate int) bool {
	for _, r := range ValidCopayRates {
		if rate == r {
			return true
		}
	}
	return false
}
