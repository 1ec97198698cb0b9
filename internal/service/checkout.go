package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/shipping"
	"github.com/dukerupert/julg/internal/tax"
	"github.com/dukerupert/julg/internal/telemetry"
	"github.com/shopspring/decimal"
)

// CheckoutService turns the caller's cart into an order.
type CheckoutService interface {
	// CreateOrder prices the logged-in user's cart, records the order and
	// member purchase, and clears the cart. Orders are created completed.
	CreateOrder(ctx context.Context, info domain.ShippingInfo) (*domain.Order, error)
}

type checkoutService struct {
	repo      *Repository
	sessions  SessionService
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
	opts      Options
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(repo *Repository, sessions SessionService, opts Options) CheckoutService {
	opts = opts.withDefaults()
	return &checkoutService{
		repo:      repo,
		sessions:  sessions,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		opts:      opts,
	}
}

func (s *checkoutService) CreateOrder(ctx context.Context, info domain.ShippingInfo) (*domain.Order, error) {
	order, err := s.createOrder(ctx, info)
	if err != nil {
		s.metrics.RecordCheckoutFailure(checkoutReason(err))
		if domain.ErrorCode(err) == domain.EINTERNAL {
			s.logger.Error("checkout failed", "request_id", domain.RequestIDFromContext(ctx), "error", err)
			identity, _ := s.sessions.Current(ctx)
			telemetry.CaptureErrorWithUser(err, identity)
		} else {
			s.logger.Debug("checkout rejected", "request_id", domain.RequestIDFromContext(ctx), "error", err)
		}
		return nil, err
	}

	s.metrics.RecordOrderCreated(order.Total, len(order.Items))
	payload := events.OrderCompleted{
		OrderID:   order.ID,
		UserID:    order.UserID,
		UserEmail: order.UserEmail,
		Items:     len(order.Items),
		Total:     order.Total,
	}
	if order.AppliedCoupon != nil {
		payload.Coupon = order.AppliedCoupon.Code
	}
	publish(ctx, s.publisher, s.logger, order.CreatedAt, events.TypeOrderCompleted, payload)

	s.logger.Info("order created",
		"request_id", domain.RequestIDFromContext(ctx),
		"order_id", order.ID,
		"user_id", order.UserID,
		"total", order.Total.StringFixed(2),
		"items", len(order.Items),
	)
	return order, nil
}

func (s *checkoutService) createOrder(ctx context.Context, info domain.ShippingInfo) (*domain.Order, error) {
	const op = "CheckoutService.CreateOrder"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	key := cartKey(identity)

	info = info.Sanitized(s.opts.DefaultCountry)

	defer s.repo.lock()()

	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return nil, err
	}

	cart, ok := carts[key]
	if !ok || cart == nil || cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(cart.Items))
	taxLines := make([]tax.LineItem, 0, len(cart.Items))
	subtotal := decimal.Zero

	for _, item := range cart.Items {
		product := productByID(courses, item.ProductID)
		if product == nil {
			return nil, domain.WrapError(domain.ErrProductNotFound, domain.ENOTFOUND, op,
				fmt.Sprintf("Product %d not found", item.ProductID))
		}
		if !product.HasStock(item.Quantity) {
			return nil, domain.WrapError(domain.ErrInsufficientStock, domain.ECONFLICT, op,
				"Insufficient stock: "+describeProduct(product))
		}

		unitPrice := product.EffectivePrice()
		total := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(total)

		lines = append(lines, domain.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Title,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			Total:       total,
		})
		taxLines = append(taxLines, tax.LineItem{
			ProductID:   product.ID,
			Description: product.Title,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  total,
			Category:    product.Category,
		})
	}

	settings, err := s.repo.settings(ctx, op)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()

	calc, err := s.taxCalculator(settings)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "Store tax rate is invalid")
	}
	taxResult, err := calc.CalculateTax(ctx, tax.TaxParams{LineItems: taxLines})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to calculate tax")
	}

	provider := s.shippingProvider(settings, now)
	rates, err := provider.GetRates(ctx, shipping.RateParams{
		DestinationAddress: shipping.ShippingAddress{
			Line1:      info.Address,
			City:       info.City,
			PostalCode: info.PostalCode,
			Country:    info.Country,
		},
		ItemCount: len(lines),
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "Shipping is not available")
	}
	rate, err := shipping.Cheapest(rates)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "Shipping is not available")
	}

	discount := cart.DiscountAmount()
	total := decimal.Max(decimal.Zero,
		subtotal.Add(taxResult.TotalTax).Add(rate.Cost).Sub(discount))

	orders, err := s.repo.orders(ctx, op)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	order := domain.Order{
		ID:                nextTimestampID(now, ids...),
		UserID:            identity.ID,
		UserEmail:         identity.Email,
		Items:             lines,
		Subtotal:          subtotal,
		Tax:               taxResult.TotalTax,
		Shipping:          rate.Cost,
		Discount:          discount,
		Total:             total,
		Status:            domain.OrderStatusCompleted,
		ShippingInfo:      info,
		CreatedAt:         now,
		EstimatedDelivery: rate.EstimatedDeliveryDate,
	}
	if cart.AppliedCoupon != nil {
		order.AppliedCoupon = &domain.OrderCoupon{Code: cart.AppliedCoupon.Code, Amount: discount}
	}

	members, err := s.repo.members(ctx, op)
	if err != nil {
		return nil, err
	}
	members = recordMemberPurchase(members, identity, &order)

	carts[key] = domain.NewCart()

	writes := map[string]any{
		keyOrders:  append([]domain.Order{order}, orders...),
		keyMembers: members,
		keyCarts:   carts,
	}
	if s.opts.DecrementStock {
		writes[keyCourses] = decrementStock(courses, lines)
	}

	if err := s.repo.commit(ctx, op, writes); err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *checkoutService) taxCalculator(settings domain.StoreSettings) (tax.Calculator, error) {
	if s.opts.TaxCalculator != nil {
		return s.opts.TaxCalculator, nil
	}
	return tax.NewPercentageCalculator(settings.EffectiveTaxRate())
}

func (s *checkoutService) shippingProvider(settings domain.StoreSettings, now time.Time) shipping.Provider {
	if s.opts.ShippingProvider != nil {
		return s.opts.ShippingProvider
	}
	return shipping.NewFlatRateProvider(
		[]shipping.FlatRate{shipping.StandardRate(settings.ShippingCost, s.opts.DeliveryDays)},
		func() time.Time { return now },
	)
}

// recordMemberPurchase upserts the buyer's member record by email.
func recordMemberPurchase(members []domain.Member, identity *domain.Identity, order *domain.Order) []domain.Member {
	for i := range members {
		if members[i].Email == identity.Email {
			members[i].RecordPurchase(order)
			return members
		}
	}

	member := domain.Member{
		ID:      identity.ID,
		Name:    identity.FullName(),
		Email:   identity.Email,
		Status:  domain.MemberStatusActive,
		Courses: []string{},
		Spent:   decimal.Zero,
	}
	member.RecordPurchase(order)
	return append(members, member)
}

// decrementStock reduces finite stock by the ordered quantities.
func decrementStock(courses []domain.Product, lines []domain.OrderLine) []domain.Product {
	for _, line := range lines {
		idx := courseIndex(courses, line.ProductID)
		if idx < 0 || courses[idx].Stock < 0 {
			continue
		}
		courses[idx].Stock -= line.Quantity
		if courses[idx].Stock < 0 {
			courses[idx].Stock = 0
		}
	}
	return courses
}
