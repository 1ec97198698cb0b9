package service

import (
	"context"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/shopspring/decimal"
)

// AdminService serves the admin dashboard and store settings.
type AdminService interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	StoreSettings(ctx context.Context) (*domain.StoreSettings, error)
	UpdateStoreSettings(ctx context.Context, update SettingsUpdate) (*domain.StoreSettings, error)
}

// DashboardStats summarizes the ledgers.
type DashboardStats struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalOrders   int             `json:"totalOrders"`
	TotalMembers  int             `json:"totalMembers"`
	TotalProducts int             `json:"totalProducts"`
}

// SettingsUpdate changes only the fields that are set.
type SettingsUpdate struct {
	StoreName    *string          `json:"storeName"`
	TaxRate      *decimal.Decimal `json:"taxRate"`
	ShippingCost *decimal.Decimal `json:"shippingCost"`
	Currency     *string          `json:"currency"`
}

type adminService struct {
	repo     *Repository
	sessions SessionService
}

// NewAdminService creates an AdminService.
func NewAdminService(repo *Repository, sessions SessionService) AdminService {
	return &adminService{repo: repo, sessions: sessions}
}

// DashboardStats counts revenue across every order and products that are
// not inactive.
func (s *adminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	const op = "AdminService.DashboardStats"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	orders, err := s.repo.orders(ctx, op)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.members(ctx, op)
	if err != nil {
		return nil, err
	}
	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.Total)
	}

	products := 0
	for _, c := range courses {
		if c.IsActive() {
			products++
		}
	}

	return &DashboardStats{
		TotalRevenue:  revenue.Round(2),
		TotalOrders:   len(orders),
		TotalMembers:  len(members),
		TotalProducts: products,
	}, nil
}

func (s *adminService) StoreSettings(ctx context.Context) (*domain.StoreSettings, error) {
	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	settings, err := s.repo.settings(ctx, "AdminService.StoreSettings")
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *adminService) UpdateStoreSettings(ctx context.Context, update SettingsUpdate) (*domain.StoreSettings, error) {
	const op = "AdminService.UpdateStoreSettings"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if update.TaxRate != nil && (update.TaxRate.IsNegative() || update.TaxRate.GreaterThan(decimal.NewFromInt(1))) {
		return nil, ErrInvalidTaxRate
	}
	if update.ShippingCost != nil && update.ShippingCost.IsNegative() {
		return nil, domain.NewValidationError(op, "shippingCost", "must be greater than or equal to 0")
	}

	defer s.repo.lock()()

	settings, err := s.repo.settings(ctx, op)
	if err != nil {
		return nil, err
	}

	if update.StoreName != nil {
		settings.StoreName = domain.Sanitize(*update.StoreName)
	}
	if update.TaxRate != nil {
		settings.TaxRate = *update.TaxRate
	}
	if update.ShippingCost != nil {
		settings.ShippingCost = *update.ShippingCost
	}
	if update.Currency != nil {
		settings.Currency = domain.Sanitize(*update.Currency)
	}

	if err := s.repo.save(ctx, op, keyStoreSettings, settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
