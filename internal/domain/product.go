package domain

import (
	"strings"
	"time"
)

const (
	ProductTypeCustom    = "custom"
	ProductTypeCatalogue = "catalogue"
)

// Sizes a pricing option may be offered in, in display order.
var ProductSizes = []string{"small", "medium", "large"}

// Product is a printable catalog item with per-size pricing.
//
// CategName is a snapshot of the category display name taken when the product is
// created or reassigned to another category. Renaming the category does not update
// it; use the explicit resync operations to refresh it.
type Product struct {
	ID          int64            `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	ProductName string           `json:"productName" gorm:"size:200;index;not null"`
	Type        string           `json:"type" gorm:"size:32;index;not null"`
	CategoryID  int64            `json:"category,string" gorm:"index;not null"`
	CategName   string           `json:"categName" gorm:"size:200;index"`
	Pricing     []ProductPricing `json:"pricing" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Color       StringList       `json:"color" gorm:"type:text"`
	Images      StringList       `json:"images" gorm:"type:text"`
	Description string           `json:"description" gorm:"type:text"`
	STLFile     string           `json:"stlFile,omitempty" gorm:"size:1024"`
	Gcode       string           `json:"gcode,omitempty" gorm:"size:1024"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ProductPricing is one (size, price) option of a product.
type ProductPricing struct {
	ID        int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	ProductID int64   `json:"-" gorm:"uniqueIndex:idx_pricing_product_size;not null"`
	Size      string  `json:"size" gorm:"size:32;uniqueIndex:idx_pricing_product_size;not null"`
	Price     float64 `json:"price" gorm:"not null"`
	Position  int     `json:"-"`
}

// TableName Specify table name
func (ProductPricing) TableName() string {
	return "product_pricing"
}

// PriceFor returns the unit price for size.
func (p *Product) PriceFor(size string) (float64, bool) {
	for _, opt := range p.Pricing {
		if opt.Size == size {
			return opt.Price, true
		}
	}
	return 0, false
}

// SizeList joins the offered sizes for messages.
func (p *Product) SizeList() string {
	sizes := make([]string, 0, len(p.Pricing))
	for _, opt := range p.Pricing {
		sizes = append(sizes, opt.Size)
	}
	return strings.Join(sizes, ", ")
}

func IsProductType(t string) bool {
	return t == ProductTypeCustom || t == ProductTypeCatalogue
}

func IsProductSize(size string) bool {
	for _, s := range ProductSizes {
		if s == size {
			return true
		}
	}
	return false
}
