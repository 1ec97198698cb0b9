package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ORDER DOMAIN TYPES
// =============================================================================

// OrderStatusCompleted is the only status an order is created with; orders
// are finalized at creation.
const OrderStatusCompleted = "completed"

var (
	ErrOrderNotFound = &Error{Code: ENOTFOUND, Message: "Order not found"}
)

// ShippingInfo is the destination captured at checkout. Fields are free
// text; Sanitized is the only normalization applied.
type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Sanitized trims every field, caps its length and fills the country
// default when empty.
func (s ShippingInfo) Sanitized(defaultCountry string) ShippingInfo {
	out := ShippingInfo{
		Address:    Sanitize(s.Address),
		City:       Sanitize(s.City),
		PostalCode: Sanitize(s.PostalCode),
		Country:    Sanitize(s.Country),
	}
	if out.Country == "" {
		out.Country = defaultCountry
	}
	return out
}

// OrderLine is a priced line frozen at checkout.
type OrderLine struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// OrderCoupon records which coupon discounted an order.
type OrderCoupon struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// Order is an immutable purchase record. Totals are fixed at creation and
// never recomputed from later catalog prices.
type Order struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"userId"`
	UserEmail         string          `json:"userEmail"`
	Items             []OrderLine     `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Shipping          decimal.Decimal `json:"shipping"`
	Discount          decimal.Decimal `json:"discount"`
	AppliedCoupon     *OrderCoupon    `json:"appliedCoupon"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	ShippingInfo      ShippingInfo    `json:"shippingInfo"`
	CreatedAt         time.Time       `json:"createdAt"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
}

// VisibleTo reports whether identity may read the order: admins see every
// order, members only their own.
func (o *Order) VisibleTo(identity *Identity) bool {
	if identity == nil {
		return false
	}
	return identity.IsAdmin() || o.UserID == identity.ID
}

// ProductNames lists the line titles in order.
func (o *Order) ProductNames() []string {
	names := make([]string, len(o.Items))
	for i, line := range o.Items {
		names[i] = line.ProductName
	}
	return names
}
