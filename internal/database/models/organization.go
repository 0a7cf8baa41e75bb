package models

type Organization struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	BizNumber string `json:"biz_number,omitempty"` // business registration number

	// Relationships
	Users      []User      `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Recipients []Recipient `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Assets     []Asset     `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Orders     []Order     `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}
