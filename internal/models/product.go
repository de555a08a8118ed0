package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	StatusActive       ProductStatus = "ACTIVE"
	StatusInactive     ProductStatus = "INACTIVE"
	StatusDiscontinued ProductStatus = "DISCONTINUED"
)

// ParseProductStatus accepts any casing of a known status.
func ParseProductStatus(s string) (ProductStatus, bool) {
	switch st := ProductStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusActive, StatusInactive, StatusDiscontinued:
		return st, true
	default:
		return "", false
	}
}

// Product is the stored aggregate root of the catalog.
type Product struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	Name          string          `gorm:"type:varchar(100);not null"`
	Description   string          `gorm:"type:varchar(500);not null;default:''"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Category      string          `gorm:"type:varchar(50);not null;index"`
	StockQuantity int             `gorm:"not null;default:0"`
	SKU           string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Images        []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Attributes    datatypes.JSON  `gorm:"not null"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:ACTIVE"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime:false"`
	CreatedBy     string          `gorm:"type:varchar(100);not null"`
	UpdatedBy     string          `gorm:"type:varchar(100);not null"`
}

// ProductImage is owned by exactly one product and dies with it.
type ProductImage struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	ProductID string `gorm:"type:varchar(36);not null;index"`
	Position  int    `gorm:"not null;default:0"`
	URL       string `gorm:"column:url;type:text"`
	Alt       string `gorm:"type:varchar(255)"`
	Primary   bool   `gorm:"column:is_primary;not null;default:false"`
}
