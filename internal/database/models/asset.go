package models

import (
	"time"

	"github.com/google/uuid"
)

type AssetStatus string

const (
	AssetStatusAvailable  AssetStatus = "AVAILABLE"  // in warehouse, rentable
	AssetStatusRented     AssetStatus = "RENTED"     // out with a recipient
	AssetStatusSanitizing AssetStatus = "SANITIZING" // returned, pending cleaning
	AssetStatusDiscarded  AssetStatus = "DISCARDED"  // written off, terminal
)

// IsValidAssetStatus reports whether s is one of the closed status set.
func IsValidAssetStatus(s AssetStatus) bool {
	switch s {
	case AssetStatusAvailable, AssetStatusRented, AssetStatusSanitizing, AssetStatusDiscarded:
		return true
	}
	return false
}

// Asset is a single physical rental unit, tracked by QR code through
// its sanitation lifecycle. Invariant: CurrentRecipientID is non-nil
// exactly when Status is RENTED.
type Asset struct {
	Base
	OrganizationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"organization_id"`
	ProductID      *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`

	SerialNumber string      `json:"serial_number,omitempty"`
	QRCode       string      `gorm:"uniqueIndex;not null" json:"qr_code"`
	Status       AssetStatus `gorm:"not null;index;default:'AVAILABLE'" json:"status"`

	CurrentRecipientID *uuid.UUID `gorm:"type:uuid;index" json:"current_recipient_id,omitempty"`
	LastSanitizedAt    *time.Time `json:"last_sanitized_at,omitempty"`

	// Relationships
	Organization     *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Product          *Product      `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	CurrentRecipient *Recipient    `gorm:"foreignKey:CurrentRecipientID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Asset) TableName() string {
	return "assets"
}
