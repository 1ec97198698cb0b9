package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// ProductStatus represents the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Catalog defaults applied when a stored course is missing a field.
const (
	DefaultProductTitle    = "Sin título"
	DefaultProductCategory = "General"
	DefaultProductImage    = "https://placehold.co/600x400?text=Curso"
	DefaultProductStock    = 999
)

var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// Product is a sellable course. A negative Stock means unlimited.
type Product struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	PriceOffer  decimal.NullDecimal `json:"priceOffer"`
	Category    string              `json:"category"`
	Stock       int                 `json:"stock"`
	Status      ProductStatus       `json:"status"`
	Image       string              `json:"image"`
	Modules     []string            `json:"modules,omitempty"`
	Rating      float64             `json:"rating"`
	Reviews     int                 `json:"reviews"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// EffectivePrice returns the offer price when one is set and nonzero,
// otherwise the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.HasOffer() {
		return p.PriceOffer.Decimal
	}
	return p.Price
}

// HasOffer reports whether a nonzero offer price is set.
func (p *Product) HasOffer() bool {
	return p.PriceOffer.Valid && !p.PriceOffer.Decimal.IsZero()
}

// Unlimited reports whether the product has no stock bound.
func (p *Product) Unlimited() bool {
	return p.Stock < 0
}

// HasStock reports whether qty units fit within the stock bound.
func (p *Product) HasStock(qty int) bool {
	return p.Unlimited() || p.Stock >= qty
}

// IsActive reports whether the product is visible in the storefront.
// Anything other than an explicit "inactive" counts as active.
func (p *Product) IsActive() bool {
	return p.Status != ProductStatusInactive
}

// Normalized returns a copy with storefront defaults filled in.
func (p Product) Normalized() Product {
	if p.Title == "" {
		p.Title = DefaultProductTitle
	}
	if p.Category == "" {
		p.Category = DefaultProductCategory
	}
	if p.Image == "" {
		p.Image = DefaultProductImage
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
	if !p.HasOffer() {
		p.PriceOffer = decimal.NullDecimal{}
	}
	if p.Modules == nil {
		p.Modules = []string{}
	}
	return p
}

// Resource is an uploaded asset managed from the admin area.
type Resource struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	DataURL   string    `json:"dataUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
