package service

import (
	"errors"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/shipping"
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidPrice     = domain.Errorf(domain.EINVALID, "", "Price cannot be negative")
	ErrInvalidTaxRate   = domain.Errorf(domain.EINVALID, "", "Tax rate must be between 0 and 1")
	ErrInvalidCategory  = domain.Errorf(domain.EINVALID, "", "Category name is required")
	ErrCourseNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Course not found")
	ErrResourceNotFound = domain.Errorf(domain.ENOTFOUND, "", "Resource not found")
)

// rejectionReason maps coupon failures to a short metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCoupon):
		return "invalid"
	case errors.Is(err, domain.ErrInactiveCoupon):
		return "inactive"
	case errors.Is(err, domain.ErrCouponNotYetValid):
		return "not_yet_valid"
	case errors.Is(err, domain.ErrCouponExpired):
		return "expired"
	case errors.Is(err, domain.ErrCouponExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrCouponNotApplicable):
		return "not_applicable"
	case errors.Is(err, domain.ErrMinimumNotMet):
		return "minimum_not_met"
	default:
		return "error"
	}
}

// checkoutReason maps checkout failures to a short metric label.
func checkoutReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth_required"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case domain.IsValidationError(err):
		return "invalid_input"
	case errors.Is(err, shipping.ErrNoRates), errors.Is(err, shipping.ErrInvalidCost):
		return "shipping_unavailable"
	default:
		return "internal"
	}
}
