package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the permanent settlement record for one rental transaction.
// Rows are never updated after creation; Total = Copay + Claim holds at
// commit and the three amounts are non-negative.
type Order struct {
	Base
	OrganizationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"organization_id"`
	RecipientID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"recipient_id"`
	UserID         *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"` // staff who processed it

	TotalAmount int64     `gorm:"not null" json:"total_amount"`
	CopayAmount int64     `gorm:"not null" json:"copay_amount"`
	ClaimAmount int64     `gorm:"not null" json:"claim_amount"`
	OrderDate   time.Time `gorm:"not null" json:"order_date"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Recipient    *Recipient    `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"recipient,omitempty"`
	User         *User         `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Items        []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order. AssetID is set when the line rents
// a tracked physical unit; Price is the amount at time of order, not a
// live reference to the catalog.
type OrderItem struct {
	Base
	OrderID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"order_id"`
	AssetID   *uuid.UUID `gorm:"type:uuid" json:"asset_id,omitempty"`
	ProductID *uuid.UUID `gorm:"type:uuid" json:"product_id,omitempty"`
	Price     int64      `gorm:"not null" json:"price"`

	// Relationships
	Asset   *Asset   `gorm:"foreignKey:AssetID;constraint:OnDelete:SET NULL" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
