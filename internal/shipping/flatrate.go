package shipping

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FlatRateProvider returns predefined flat-rate shipping options.
type FlatRateProvider struct {
	rates []FlatRate
	now   func() time.Time
}

// FlatRate defines a single flat-rate shipping option.
type FlatRate struct {
	ServiceName string
	ServiceCode string
	Cost        decimal.Decimal
	DaysMin     int
	DaysMax     int
}

// StandardRate builds the single option the store offers: a fixed cost
// delivered within days.
func StandardRate(cost decimal.Decimal, days int) FlatRate {
	return FlatRate{
		ServiceName: "Envío estándar",
		ServiceCode: "STD",
		Cost:        cost,
		DaysMin:     days,
		DaysMax:     days,
	}
}

// NewFlatRateProvider creates a new flat-rate shipping provider.
// now defaults to time.Now when nil.
func NewFlatRateProvider(rates []FlatRate, now func() time.Time) *FlatRateProvider {
	if now == nil {
		now = time.Now
	}
	return &FlatRateProvider{rates: rates, now: now}
}

// GetRates converts flat rates to Rate objects.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if params.ItemCount <= 0 {
		return nil, ErrNoItems
	}

	now := p.now()
	result := make([]Rate, 0, len(p.rates))
	for _, fr := range p.rates {
		if fr.Cost.IsNegative() {
			return nil, ErrInvalidCost
		}
		if !wanted(fr.ServiceCode, params.ServiceTypes) {
			continue
		}
		result = append(result, Rate{
			RateID:                fr.ServiceCode,
			Carrier:               "Flat Rate",
			ServiceName:           fr.ServiceName,
			ServiceCode:           fr.ServiceCode,
			Cost:                  fr.Cost.Round(2),
			EstimatedDaysMin:      fr.DaysMin,
			EstimatedDaysMax:      fr.DaysMax,
			EstimatedDeliveryDate: now.AddDate(0, 0, fr.DaysMax),
		})
	}

	if len(result) == 0 {
		return nil, ErrNoRates
	}
	return result, nil
}

func wanted(code string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == code {
			return true
		}
	}
	return false
}
