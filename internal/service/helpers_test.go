package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	adminIdentity  = &domain.Identity{ID: 1, Email: "admin@julg.com", FirstName: "Admin", LastName: "JULG", Role: domain.RoleAdmin}
	memberIdentity = &domain.Identity{ID: 2, Email: "ana@example.com", FirstName: "Ana", LastName: "García", Role: domain.RoleMember}
	otherIdentity  = &domain.Identity{ID: 3, Email: "luis@example.com", FirstName: "Luis", LastName: "Pérez", Role: domain.RoleMember}
)

// flakyStore fails batch writes on demand.
type flakyStore struct {
	*storage.MemoryStore
	failSetMany bool
	failSet     bool
}

var errStoreDown = errors.New("store unavailable")

func (s *flakyStore) Set(ctx context.Context, key string, value any) error {
	if s.failSet {
		return errStoreDown
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *flakyStore) SetMany(ctx context.Context, values map[string]any) error {
	if s.failSetMany {
		return errStoreDown
	}
	return s.MemoryStore.SetMany(ctx, values)
}

type fixture struct {
	store     *flakyStore
	repo      *Repository
	sf        *Storefront
	publisher *events.RecordingPublisher
	opts      Options
}

func testOptions(publisher events.Publisher) Options {
	return Options{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Publisher:    publisher,
		Now:          func() time.Time { return fixedNow },
		PasswordCost: bcrypt.MinCost,
	}
}

// newFixture builds a seeded storefront over an in-memory store.
func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()

	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	repo := NewRepository(store)

	err := EnsureDefaults(context.Background(), repo, SeedOptions{
		AdminEmail:    "admin@julg.com",
		AdminPassword: "admin1234",
		PasswordCost:  bcrypt.MinCost,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:           func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	publisher := &events.RecordingPublisher{}
	opts := testOptions(publisher)
	for _, m := range mutate {
		m(&opts)
	}

	return &fixture{
		store:     store,
		repo:      repo,
		sf:        New(repo, opts),
		publisher: publisher,
		opts:      opts,
	}
}

func asUser(identity *domain.Identity) context.Context {
	return domain.NewContextWithIdentity(context.Background(), identity)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// setCourses replaces the catalog.
func (f *fixture) setCourses(t *testing.T, courses ...domain.Product) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), keyCourses, courses))
}

// setCoupons replaces the coupon list.
func (f *fixture) setCoupons(t *testing.T, coupons ...domain.Coupon) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), keyCoupons, coupons))
}

func (f *fixture) setSettings(t *testing.T, settings domain.StoreSettings) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), keyStoreSettings, settings))
}

func (f *fixture) cart(t *testing.T, key string) *domain.Cart {
	t.Helper()
	carts, err := f.repo.carts(context.Background(), "test")
	require.NoError(t, err)
	return carts[key]
}

func (f *fixture) coupon(t *testing.T, code string) domain.Coupon {
	t.Helper()
	coupons, err := f.repo.coupons(context.Background(), "test")
	require.NoError(t, err)
	for _, c := range coupons {
		if c.Code == code {
			return c
		}
	}
	t.Fatalf("coupon %s not found", code)
	return domain.Coupon{}
}

func course(id int64, title, price, category string, stock int) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    title,
		Price:    money(price),
		Category: category,
		Stock:    stock,
		Status:   domain.ProductStatusActive,
	}
}

func percentCoupon(code, discount, minPurchase string) domain.Coupon {
	return domain.Coupon{
		ID:                   1,
		Code:                 code,
		Discount:             money(discount),
		Type:                 domain.DiscountPercentage,
		MaxUses:              100,
		MinPurchase:          money(minPurchase),
		ApplicableCategories: []string{},
		ValidFrom:            fixedNow.Add(-time.Hour),
		ValidUntil:           fixedNow.Add(24 * time.Hour),
		Status:               domain.CouponStatusActive,
	}
}
