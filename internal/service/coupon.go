package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/telemetry"
	"github.com/dukerupert/julg/internal/validate"
	"github.com/shopspring/decimal"
)

// CouponService validates and applies discount codes.
type CouponService interface {
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	// ApplyCoupon attaches a coupon to the caller's cart. Every successful
	// call counts as a use, including re-applying the same code.
	ApplyCoupon(ctx context.Context, code string) (*AppliedDiscount, error)
	// RemoveCoupon detaches the coupon from a logged-in user's cart.
	RemoveCoupon(ctx context.Context) error

	CreateCoupon(ctx context.Context, input CouponInput) (*domain.Coupon, error)
	DeleteCoupon(ctx context.Context, id int64) error
}

// AppliedDiscount reports the amount a coupon took off the cart.
type AppliedDiscount struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// CouponInput describes a new coupon. Zero values take defaults:
// percentage type, valid from now for 30 days, active.
type CouponInput struct {
	Code                 string              `json:"code" validate:"required,max=255"`
	Discount             decimal.Decimal     `json:"discount"`
	Type                 domain.DiscountType `json:"type" validate:"omitempty,oneof=percentage fixed"`
	MaxUses              int                 `json:"maxUses" validate:"gte=0"`
	MinPurchase          decimal.Decimal     `json:"minPurchase"`
	ApplicableCategories []string            `json:"applicableCategories"`
	ValidFrom            time.Time           `json:"validFrom"`
	ValidUntil           time.Time           `json:"validUntil"`
	Status               domain.CouponStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

const defaultCouponValidity = 30 * 24 * time.Hour

var hundred = decimal.NewFromInt(100)

type couponService struct {
	repo      *Repository
	sessions  SessionService
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
	now       func() time.Time
}

// NewCouponService creates a CouponService.
func NewCouponService(repo *Repository, sessions SessionService, opts Options) CouponService {
	opts = opts.withDefaults()
	return &couponService{
		repo:      repo,
		sessions:  sessions,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		now:       opts.Now,
	}
}

func (s *couponService) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.repo.coupons(ctx, "CouponService.ListCoupons")
}

func (s *couponService) ApplyCoupon(ctx context.Context, code string) (*AppliedDiscount, error) {
	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	key := cartKey(identity)

	defer s.repo.lock()()

	applied, err := s.apply(ctx, key, domain.NormalizeCouponCode(code))
	if err != nil {
		if domain.ErrorCode(err) != domain.EINTERNAL {
			s.metrics.RecordCouponRejected(rejectionReason(err))
			s.logger.Debug("coupon rejected", "cart_key", key, "coupon", code, "error", err)
		}
		return nil, err
	}

	s.metrics.RecordCouponApplied(applied.Code)
	publish(ctx, s.publisher, s.logger, s.now(), events.TypeCouponApplied, events.CouponApplied{
		Code:    applied.Code,
		CartKey: key,
		Amount:  applied.Amount,
	})
	s.logger.Info("coupon applied", "cart_key", key, "coupon", applied.Code, "discount", applied.Amount.StringFixed(2))
	return applied, nil
}

// apply runs the eligibility checks in order and commits the cart and the
// coupon use count together. Callers hold the repository lock.
func (s *couponService) apply(ctx context.Context, key, code string) (*AppliedDiscount, error) {
	const op = "CouponService.ApplyCoupon"

	coupons, err := s.repo.coupons(ctx, op)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range coupons {
		if coupons[i].Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrInvalidCoupon
	}
	coupon := &coupons[idx]

	if coupon.Status != domain.CouponStatusActive {
		return nil, domain.ErrInactiveCoupon
	}
	if err := coupon.CheckWindow(s.now()); err != nil {
		return nil, err
	}
	if coupon.Exhausted() {
		return nil, domain.ErrCouponExhausted
	}

	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return nil, err
	}
	cart, ok := carts[key]
	if !ok || cart == nil {
		cart = domain.NewCart()
		carts[key] = cart
	}

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	categories := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		product := productByID(courses, item.ProductID)
		if product == nil {
			continue
		}
		categories = append(categories, product.Category)
		subtotal = subtotal.Add(product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !coupon.AppliesTo(categories) {
		return nil, domain.ErrCouponNotApplicable
	}
	if !coupon.MeetsMinimum(subtotal) {
		return nil, domain.WrapError(domain.ErrMinimumNotMet, domain.EINVALID, op,
			"Minimum purchase: "+coupon.MinPurchase.StringFixed(2))
	}

	amount := coupon.DiscountFor(subtotal)
	cart.AppliedCoupon = coupon.Applied(amount)
	coupon.UsedCount++

	if err := s.repo.commit(ctx, op, map[string]any{
		keyCarts:   carts,
		keyCoupons: coupons,
	}); err != nil {
		return nil, err
	}

	return &AppliedDiscount{Code: coupon.Code, Amount: amount}, nil
}

// RemoveCoupon requires a session; the anonymous cart cannot drop its
// coupon other than by clearing the cart.
func (s *couponService) RemoveCoupon(ctx context.Context) error {
	const op = "CouponService.RemoveCoupon"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return err
	}
	key := cartKey(identity)

	defer s.repo.lock()()

	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return err
	}

	cart, ok := carts[key]
	if !ok || cart == nil {
		return nil
	}

	cart.AppliedCoupon = nil
	if err := s.repo.save(ctx, op, keyCarts, carts); err != nil {
		return err
	}

	s.logger.Info("coupon removed", "cart_key", key)
	return nil
}

func (s *couponService) CreateCoupon(ctx context.Context, input CouponInput) (*domain.Coupon, error) {
	const op = "CouponService.CreateCoupon"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	input.Code = domain.NormalizeCouponCode(input.Code)
	if err := validate.Struct(op, input); err != nil {
		return nil, err
	}

	if input.Type == "" {
		input.Type = domain.DiscountPercentage
	}
	if input.Status == "" {
		input.Status = domain.CouponStatusActive
	}

	var verr error
	if input.Discount.IsNegative() {
		verr = domain.AddFieldError(verr, "discount", "must be greater than or equal to 0")
	}
	if input.Type == domain.DiscountPercentage && input.Discount.GreaterThan(hundred) {
		verr = domain.AddFieldError(verr, "discount", "must be at most 100 for percentage coupons")
	}
	if input.MinPurchase.IsNegative() {
		verr = domain.AddFieldError(verr, "minPurchase", "must be greater than or equal to 0")
	}

	now := s.now()
	if input.ValidFrom.IsZero() {
		input.ValidFrom = now
	}
	if input.ValidUntil.IsZero() {
		input.ValidUntil = now.Add(defaultCouponValidity)
	}
	if input.ValidUntil.Before(input.ValidFrom) {
		verr = domain.AddFieldError(verr, "validUntil", "must not be before validFrom")
	}
	if verr != nil {
		var ve *domain.ValidationError
		if errors.As(verr, &ve) {
			ve.Op = op
		}
		return nil, verr
	}

	defer s.repo.lock()()

	coupons, err := s.repo.coupons(ctx, op)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(coupons))
	for i, c := range coupons {
		if c.Code == input.Code {
			return nil, domain.ErrDuplicateCoupon
		}
		ids[i] = c.ID
	}

	categories := input.ApplicableCategories
	if categories == nil {
		categories = []string{}
	}

	coupon := domain.Coupon{
		ID:                   nextTimestampID(now, ids...),
		Code:                 input.Code,
		Discount:             input.Discount,
		Type:                 input.Type,
		MaxUses:              input.MaxUses,
		UsedCount:            0,
		MinPurchase:          input.MinPurchase,
		ApplicableCategories: categories,
		ValidFrom:            input.ValidFrom,
		ValidUntil:           input.ValidUntil,
		Status:               input.Status,
	}

	coupons = append(coupons, coupon)
	if err := s.repo.save(ctx, op, keyCoupons, coupons); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created", "coupon", coupon.Code, "coupon_id", coupon.ID)
	return &coupon, nil
}

func (s *couponService) DeleteCoupon(ctx context.Context, id int64) error {
	const op = "CouponService.DeleteCoupon"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return err
	}

	defer s.repo.lock()()

	coupons, err := s.repo.coupons(ctx, op)
	if err != nil {
		return err
	}

	kept := make([]domain.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.ID != id {
			kept = append(kept, c)
		}
	}

	return s.repo.save(ctx, op, keyCoupons, kept)
}
