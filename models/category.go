package models

// Category groups products in the catalog.
type Category struct {
	ID       uint      `gorm:"primaryKey"`
	Name     string    `gorm:"not null"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}

func (c *Category) TableName() string {
	return "categories"
}
