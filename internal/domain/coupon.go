package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COUPON DOMAIN TYPES
// =============================================================================

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// CouponStatus represents whether a coupon can be redeemed.
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

// MaxInputLength caps free-text input stored by the storefront.
const MaxInputLength = 255

var (
	ErrCouponNotFound      = &Error{Code: ENOTFOUND, Message: "Coupon not found"}
	ErrInvalidCoupon       = &Error{Code: EINVALID, Message: "Invalid coupon"}
	ErrInactiveCoupon      = &Error{Code: EINVALID, Message: "Coupon is inactive"}
	ErrCouponNotYetValid   = &Error{Code: EINVALID, Message: "Coupon is not valid yet"}
	ErrCouponExpired       = &Error{Code: EINVALID, Message: "Coupon has expired"}
	ErrCouponExhausted     = &Error{Code: EINVALID, Message: "Coupon has no uses left"}
	ErrCouponNotApplicable = &Error{Code: EINVALID, Message: "Coupon does not apply to your products"}
	ErrMinimumNotMet       = &Error{Code: EINVALID, Message: "Minimum purchase not met"}
	ErrDuplicateCoupon     = &Error{Code: ECONFLICT, Message: "Coupon code already exists"}
)

// minimumTotal is the lowest total a non-empty cart can reach through a
// coupon discount.
var minimumTotal = decimal.NewFromInt(1)

// Coupon is a discount code definition.
type Coupon struct {
	ID                   int64           `json:"id"`
	Code                 string          `json:"code"`
	Discount             decimal.Decimal `json:"discount"`
	Type                 DiscountType    `json:"type"`
	MaxUses              int             `json:"maxUses"`
	UsedCount            int             `json:"usedCount"`
	MinPurchase          decimal.Decimal `json:"minPurchase"`
	ApplicableCategories []string        `json:"applicableCategories"`
	ValidFrom            time.Time       `json:"validFrom"`
	ValidUntil           time.Time       `json:"validUntil"`
	Status               CouponStatus    `json:"status"`
}

// NormalizeCouponCode trims, truncates and uppercases a code so lookups
// are case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(Sanitize(code))
}

// Sanitize trims surrounding space and caps the length at MaxInputLength.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxInputLength {
		s = string(r[:MaxInputLength])
	}
	return s
}

// CheckWindow returns ErrCouponNotYetValid or ErrCouponExpired when now
// falls outside the validity window. Zero bounds are open.
func (c *Coupon) CheckWindow(now time.Time) error {
	if !c.ValidFrom.IsZero() && c.ValidFrom.After(now) {
		return ErrCouponNotYetValid
	}
	if !c.ValidUntil.IsZero() && c.ValidUntil.Before(now) {
		return ErrCouponExpired
	}
	return nil
}

// Exhausted reports whether a bounded coupon has been used up.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses > 0 && c.UsedCount >= c.MaxUses
}

// AppliesTo reports whether the coupon covers at least one of the given
// categories. A coupon without category restrictions applies to anything.
func (c *Coupon) AppliesTo(categories []string) bool {
	if len(c.ApplicableCategories) == 0 {
		return true
	}
	for _, want := range c.ApplicableCategories {
		for _, have := range categories {
			if want == have {
				return true
			}
		}
	}
	return false
}

// MeetsMinimum reports whether subtotal satisfies MinPurchase.
func (c *Coupon) MeetsMinimum(subtotal decimal.Decimal) bool {
	return !c.MinPurchase.IsPositive() || subtotal.GreaterThanOrEqual(c.MinPurchase)
}

// DiscountFor computes the discount for a subtotal, rounded to cents and
// clamped so the discounted total never drops below one currency unit.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	switch c.Type {
	case DiscountPercentage:
		raw = subtotal.Mul(c.Discount).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		raw = c.Discount
	}
	raw = decimal.Max(raw.Round(2), decimal.Zero)

	ceiling := decimal.Max(decimal.Zero, subtotal.Sub(minimumTotal))
	return decimal.Min(raw, ceiling)
}

// Applied builds the cart attachment for a computed amount.
func (c *Coupon) Applied(amount decimal.Decimal) *AppliedCoupon {
	return &AppliedCoupon{
		Code:     c.Code,
		Discount: c.Discount,
		Type:     c.Type,
		Amount:   amount,
		CouponID: c.ID,
	}
}
