package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/julg/internal/auth"
	"github.com/dukerupert/julg/internal/domain"
	"github.com/shopspring/decimal"
)

// SeedOptions controls the first-run defaults.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	PasswordCost  int
	Logger        *slog.Logger
	Now           func() time.Time
}

// DefaultCategories are the categories a fresh store starts with.
var DefaultCategories = []string{"Contabilidad", "Fiscal", "Programación", "Marketing"}

// EnsureDefaults writes the first-run value of every key that has never
// been written. Keys that already exist are left alone, even when empty.
func EnsureDefaults(ctx context.Context, repo *Repository, opts SeedOptions) error {
	const op = "EnsureDefaults"

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@julg.com"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin1234"
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = auth.DefaultCost
	}
	now := opts.Now()

	defer repo.lock()()

	defaults := []struct {
		key   string
		value func() (any, error)
	}{
		{keyUsers, func() (any, error) { return seedUsers(opts, now) }},
		{keyCourses, func() (any, error) { return seedCourses(now), nil }},
		{keyCoupons, func() (any, error) { return seedCoupons(now), nil }},
		{keyCategories, func() (any, error) { return DefaultCategories, nil }},
		{keyStoreSettings, func() (any, error) { return seedSettings(), nil }},
		{keyOrders, func() (any, error) { return []domain.Order{}, nil }},
		{keyCarts, func() (any, error) { return map[string]*domain.Cart{}, nil }},
		{keyMembers, func() (any, error) { return []domain.Member{}, nil }},
		{keyResources, func() (any, error) { return []domain.Resource{}, nil }},
		{keyResetTokens, func() (any, error) { return []domain.ResetToken{}, nil }},
	}

	writes := make(map[string]any)
	for _, d := range defaults {
		found, err := repo.exists(ctx, op, d.key)
		if err != nil {
			return err
		}
		if found {
			continue
		}

		value, err := d.value()
		if err != nil {
			return err
		}
		writes[d.key] = value
	}

	if len(writes) == 0 {
		return nil
	}

	if err := repo.commit(ctx, op, writes); err != nil {
		return err
	}

	seeded := make([]string, 0, len(writes))
	for key := range writes {
		seeded = append(seeded, key)
	}
	opts.Logger.Info("seeded defaults", "keys", seeded)
	return nil
}

func seedUsers(opts SeedOptions, now time.Time) ([]domain.User, error) {
	hash, err := auth.HashPasswordCost(opts.AdminPassword, opts.PasswordCost)
	if err != nil {
		return nil, domain.Internal(err, "EnsureDefaults", "failed to hash admin password")
	}

	return []domain.User{{
		ID:           1,
		Email:        normalizeEmail(opts.AdminEmail),
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "JULG",
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		Settings:     domain.UserSettings{EmailNotifications: true},
	}}, nil
}

func seedCourses(now time.Time) []domain.Product {
	return []domain.Product{
		{
			ID:          1001,
			Title:       "Introducción a Contabilidad",
			Description: "Curso básico para empezar",
			Price:       decimal.NewFromInt(120),
			PriceOffer:  decimal.NewNullDecimal(decimal.NewFromInt(99)),
			Category:    "Contabilidad",
			Stock:       domain.DefaultProductStock,
			Status:      domain.ProductStatusActive,
			Image:       "https://placehold.co/600x400?text=Contabilidad",
			Modules:     []string{},
			Rating:      4.5,
			Reviews:     12,
			CreatedAt:   now,
		},
		{
			ID:          1002,
			Title:       "Impuestos Avanzados",
			Description: "Aprende a dominar impuestos",
			Price:       decimal.NewFromInt(250),
			PriceOffer:  decimal.NewNullDecimal(decimal.NewFromInt(199)),
			Category:    "Fiscal",
			Stock:       domain.DefaultProductStock,
			Status:      domain.ProductStatusActive,
			Image:       "https://placehold.co/600x400?text=Impuestos",
			Modules:     []string{},
			Rating:      4.8,
			Reviews:     25,
			CreatedAt:   now,
		},
	}
}

func seedCoupons(now time.Time) []domain.Coupon {
	return []domain.Coupon{{
		ID:                   1,
		Code:                 "WELCOME10",
		Discount:             decimal.NewFromInt(10),
		Type:                 domain.DiscountPercentage,
		MaxUses:              100,
		MinPurchase:          decimal.Zero,
		ApplicableCategories: []string{},
		ValidFrom:            now,
		ValidUntil:           now.AddDate(0, 0, 30),
		Status:               domain.CouponStatusActive,
	}}
}

func seedSettings() domain.StoreSettings {
	return domain.StoreSettings{
		StoreName:    "JULG",
		TaxRate:      domain.DefaultTaxRate,
		ShippingCost: decimal.Zero,
		Currency:     "ARS",
	}
}
