package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartItemNotFound  = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock"}
	ErrEmptyCart         = &Error{Code: EINVALID, Message: "Cart is empty"}
)

// AnonymousCartKey indexes the cart shared by every session without a
// logged-in user. It can never collide with a numeric user id.
const AnonymousCartKey = "__anonymous__"

// CartKeyForUser returns the cart map key for a user id.
func CartKeyForUser(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// CartItem is a line in a cart. The line is identified by ID, not by
// ProductID; adding the same product again increments Quantity.
type CartItem struct {
	ID        string `json:"id"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AppliedCoupon is the coupon currently attached to a cart with the
// discount amount computed when it was applied.
type AppliedCoupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Type     DiscountType    `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	CouponID int64           `json:"couponId"`
}

// Cart holds one identity's lines and applied coupon.
type Cart struct {
	Items         []CartItem     `json:"items"`
	AppliedCoupon *AppliedCoupon `json:"appliedCoupon"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// Reset empties the cart and drops the coupon.
func (c *Cart) Reset() {
	c.Items = []CartItem{}
	c.AppliedCoupon = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemIndex returns the index of the line with the given id, or -1.
func (c *Cart) ItemIndex(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ProductIndex returns the index of the line holding productID, or -1.
func (c *Cart) ProductIndex(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveItem filters out the line with the given id. Missing ids are a no-op.
func (c *Cart) RemoveItem(itemID string) {
	kept := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// DiscountAmount returns the applied coupon amount, or zero.
func (c *Cart) DiscountAmount() decimal.Decimal {
	if c.AppliedCoupon == nil {
		return decimal.Zero
	}
	return c.AppliedCoupon.Amount
}
