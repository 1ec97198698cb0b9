package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator
type Calculator interface {
	// CalculateTax computes tax for order line items.
	CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error)
}

// TaxParams contains all information needed for tax calculation.
type TaxParams struct {
	LineItems []LineItem
	Shipping  decimal.Decimal
	// TaxShipping adds Shipping to the taxable base. The storefront taxes
	// products only, so checkout leaves it false.
	TaxShipping bool
}

// LineItem represents a single item being taxed.
type LineItem struct {
	ProductID   int64
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Category    string
}

// TaxResult contains the calculated tax amount and breakdown.
type TaxResult struct {
	TotalTax  decimal.Decimal
	Breakdown []TaxBreakdown
}

// TaxBreakdown represents tax for a single rate.
type TaxBreakdown struct {
	Name   string
	Rate   decimal.Decimal // e.g., 0.21 for 21%
	Amount decimal.Decimal
}

// taxableBase sums line totals, plus shipping when requested.
func taxableBase(params TaxParams) decimal.Decimal {
	base := decimal.Zero
	for _, item := range params.LineItems {
		base = base.Add(item.TotalPrice)
	}
	if params.TaxShipping {
		base = base.Add(params.Shipping)
	}
	return base
}
