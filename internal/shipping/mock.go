package shipping

import (
	"context"
)

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	GetRatesFunc func(ctx context.Context, params RateParams) ([]Rate, error)
	Calls        []RateParams
}

// NewMockProvider creates a mock returning a single free rate.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// GetRates delegates to the configured function or returns a default result.
func (m *MockProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	m.Calls = append(m.Calls, params)
	if m.GetRatesFunc != nil {
		return m.GetRatesFunc(ctx, params)
	}
	return []Rate{{RateID: "MOCK", Carrier: "Mock", ServiceCode: "MOCK"}}, nil
}
