package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// PercentageCalculator calculates tax using a single flat rate.
type PercentageCalculator struct {
	rate decimal.Decimal // e.g., 0.21 for 21%
}

// NewPercentageCalculator creates a new percentage-based tax calculator.
// Rates outside [0, 1] are rejected.
func NewPercentageCalculator(rate decimal.Decimal) (*PercentageCalculator, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidTaxRate
	}
	return &PercentageCalculator{rate: rate}, nil
}

// CalculateTax applies the rate to the taxable base and rounds to cents.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	amount := taxableBase(params).Mul(c.rate).Round(2)

	return &TaxResult{
		TotalTax: amount,
		Breakdown: []TaxBreakdown{
			{
				Name:   "IVA",
				Rate:   c.rate,
				Amount: amount,
			},
		},
	}, nil
}
