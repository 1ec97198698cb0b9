package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/julg/internal/auth"
	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/shipping"
	"github.com/dukerupert/julg/internal/tax"
	"github.com/dukerupert/julg/internal/telemetry"
)

// Options carries the collaborators and tunables shared by every service.
// Zero values are replaced with working defaults.
type Options struct {
	Logger    *slog.Logger
	Metrics   *telemetry.BusinessMetrics
	Publisher events.Publisher
	Now       func() time.Time

	// DecrementStock reduces finite stock when an order commits.
	DecrementStock bool
	DeliveryDays   int
	DefaultCountry string

	// PasswordCost is the bcrypt cost for new hashes.
	PasswordCost int

	// TaxCalculator and ShippingProvider override the store-settings
	// flat rate and percentage tax when set.
	TaxCalculator    tax.Calculator
	ShippingProvider shipping.Provider
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Publisher == nil {
		o.Publisher = events.NoopPublisher{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DeliveryDays <= 0 {
		o.DeliveryDays = 7
	}
	if o.DefaultCountry == "" {
		o.DefaultCountry = "Argentina"
	}
	if o.PasswordCost == 0 {
		o.PasswordCost = auth.DefaultCost
	}
	return o
}

// Storefront bundles the services over one repository.
type Storefront struct {
	Sessions SessionService
	Users    UserService
	Catalog  CatalogService
	Carts    CartService
	Coupons  CouponService
	Checkout CheckoutService
	Orders   OrderService
	Members  MemberService
	Admin    AdminService
}

// New wires every service against repo.
func New(repo *Repository, opts Options) *Storefront {
	opts = opts.withDefaults()

	sessions := NewSessionService(repo)
	return &Storefront{
		Sessions: sessions,
		Users:    NewUserService(repo, sessions, opts),
		Catalog:  NewCatalogService(repo, sessions, opts),
		Carts:    NewCartService(repo, sessions, opts),
		Coupons:  NewCouponService(repo, sessions, opts),
		Checkout: NewCheckoutService(repo, sessions, opts),
		Orders:   NewOrderService(repo, sessions),
		Members:  NewMemberService(repo, sessions),
		Admin:    NewAdminService(repo, sessions),
	}
}

// publish sends an event after a commit. Failures are logged only; the
// state change they describe has already been written.
func publish(ctx context.Context, p events.Publisher, logger *slog.Logger, at time.Time, eventType string, payload any) {
	requestID := domain.RequestIDFromContext(ctx)
	err := p.Publish(ctx, events.Event{Type: eventType, OccurredAt: at, RequestID: requestID, Payload: payload})
	if err != nil {
		logger.Warn("event publish failed", "type", eventType, "request_id", requestID, "error", err)
	}
}
