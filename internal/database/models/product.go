package models

// Product is the tenant-independent master catalog of welfare devices,
// keyed by the nationally assigned device code.
type Product struct {
	Base
	Code            string `gorm:"uniqueIndex;not null" json:"code"`
	Name            string `gorm:"not null" json:"name"`
	Price           int64  `gorm:"not null" json:"price"` // listed price in won
	Category        string `json:"category,omitempty"`
	DurabilityYears int    `gorm:"default:0" json:"durability_years"`
}

func (Product) TableName() string {
	return "products"
}
