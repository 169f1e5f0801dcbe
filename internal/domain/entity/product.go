package entity

import (
	"strings"
	"time"
)

// Product categories offered in the marketplace.
const (
	CategorySeeds       = "Seeds"
	CategorySupplements = "Supplements"
	CategoryMachinery   = "Machinery"
	CategoryPesticides  = "Pesticides"
	CategorySoil        = "Soil"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// DefaultProductDescription is used when a product is created without a description.
const DefaultProductDescription = "Standard agriculture product."

// Categories lists the accepted product categories in display order.
var Categories = []string{
	CategorySeeds,
	CategorySupplements,
	CategoryMachinery,
	CategoryPesticides,
	CategorySoil,
}

// Product is an item sold in the marketplace.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	Description string
	Quantity    int
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDefaults fills optional fields left empty by the caller.
func (p *Product) ApplyDefaults() {
	p.Name = strings.TrimSpace(p.Name)
	if strings.TrimSpace(p.Category) == "" {
		p.Category = CategorySeeds
	}
	if strings.TrimSpace(p.Description) == "" {
		p.Description = DefaultProductDescription
	}
}

// Validate checks field presence and ranges.
func (p *Product) Validate() error {
	if err := validateName("name", p.Name); err != nil {
		return err
	}
	if err := validatePrice(p.Price); err != nil {
		return err
	}
	if p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be zero or greater"}
	}
	if !IsKnownCategory(p.Category) {
		return &ValidationError{
			Field:   "category",
			Message: "category is invalid (must be one of " + strings.Join(Categories, ", ") + ")",
		}
	}
	return nil
}

// LowStock reports whether the product is below the restock threshold.
func (p *Product) LowStock() bool {
	return p.Quantity < LowStockThreshold
}

// StockStatus is the label shown on the inventory overview.
func (p *Product) StockStatus() string {
	if p.LowStock() {
		return "Low Stock"
	}
	return "Stable"
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
