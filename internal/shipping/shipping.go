package shipping

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provider defines the interface for shipping operations.
// The storefront sells digital courses, so only rate quotes are needed.
type Provider interface {
	// GetRates returns available shipping options for an order.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}

// RateParams contains parameters for calculating shipping rates.
type RateParams struct {
	DestinationAddress ShippingAddress
	ItemCount          int
	ServiceTypes       []string // Optional filter for specific service codes
}

// ShippingAddress is the destination captured at checkout.
type ShippingAddress struct {
	Line1      string
	City       string
	PostalCode string
	Country    string
}

// Rate represents a shipping rate option.
type Rate struct {
	RateID                string
	Carrier               string
	ServiceName           string
	ServiceCode           string
	Cost                  decimal.Decimal
	EstimatedDaysMin      int
	EstimatedDaysMax      int
	EstimatedDeliveryDate time.Time
}

// Cheapest returns the lowest cost rate, or ErrNoRates when rates is empty.
func Cheapest(rates []Rate) (Rate, error) {
	if len(rates) == 0 {
		return Rate{}, ErrNoRates
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if r.Cost.LessThan(best.Cost) {
			best = r
		}
	}
	return best, nil
}
