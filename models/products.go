package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level at or below which a product shows up
// on the dashboard.
const LowStockThreshold = 5

// Product represents a product in the catalog.
// Stock is never negative; the sales path is the only one that decrements it.
type Product struct {
	ID         uint            `gorm:"primaryKey"`
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;check:price >= 0"`
	Stock      int             `gorm:"not null;default:0;check:stock >= 0"`
	Image      string          `gorm:"size:255"`
	CategoryID uint            `gorm:"not null;index"`
	Category   Category        `gorm:"foreignKey:CategoryID"`
}

func (p *Product) TableName() string {
	return "products"
}

// ImageURL resolves the stored image reference against the media prefix.
// Products without an image yield an empty string.
func (p *Product) ImageURL(mediaURL string) string {
	if p.Image == "" {
		return ""
	}
	if strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://") {
		return p.Image
	}
	return strings.TrimSuffix(mediaURL, "/") + "/" + strings.TrimPrefix(p.Image, "/")
}
