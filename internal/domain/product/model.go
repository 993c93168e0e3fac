package product

import (
	"errors"
	"strings"
)

// Category constants
const (
	CategorySupplements = "supplements"
	CategoryApparel     = "apparel"
	CategoryEquipment   = "equipment"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("product name cannot be empty")
	ErrInvalidPrice    = errors.New("product price cannot be negative")
	ErrInvalidStock    = errors.New("product stock cannot be negative")
	ErrInvalidCategory = errors.New("category must be 'supplements', 'apparel', or 'equipment'")
)

// Product is an item sold in the storefront.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	PriceCents int64  `json:"priceCents"`
	Stock      int    `json:"stock"`
}

// Validate checks if the Product has valid data.
// PRE: Product struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	switch p.Category {
	case CategorySupplements, CategoryApparel, CategoryEquipment:
	default:
		return ErrInvalidCategory
	}
	return nil
}

// InStock returns true if at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
