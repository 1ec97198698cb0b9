package service

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService provides business logic for shopping cart operations.
// Every operation acts on the caller's cart: the logged-in user's, or the
// shared anonymous cart when there is no session.
type CartService interface {
	GetCart(ctx context.Context) (*CartView, error)
	GetOrCreateCart(ctx context.Context, key string) (*domain.Cart, error)
	ResolveCartKey(ctx context.Context) (string, error)
	AddItem(ctx context.Context, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// CartView joins cart lines with live catalog data and computes totals.
type CartView struct {
	Items         []CartLineView     `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Shipping      decimal.Decimal    `json:"shipping"`
	Discount      decimal.Decimal    `json:"discount"`
	AppliedCoupon *AppliedCouponView `json:"appliedCoupon"`
	Total         decimal.Decimal    `json:"total"`
	Count         int                `json:"count"`
	IsAnonymous   bool               `json:"isAnonymous"`
}

// CartLineView is a cart line with its product.
type CartLineView struct {
	ID       string         `json:"id"`
	Quantity int            `json:"quantity"`
	Product  domain.Product `json:"product"`
}

// AppliedCouponView is the public part of a cart's applied coupon.
type AppliedCouponView struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

var minimumTotal = decimal.NewFromInt(1)

type cartService struct {
	repo      *Repository
	sessions  SessionService
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
	opts      Options
}

// NewCartService creates a new CartService instance
func NewCartService(repo *Repository, sessions SessionService, opts Options) CartService {
	opts = opts.withDefaults()
	return &cartService{
		repo:      repo,
		sessions:  sessions,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		opts:      opts,
	}
}

// ResolveCartKey returns the user's id key, or the anonymous key.
func (s *cartService) ResolveCartKey(ctx context.Context) (string, error) {
	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return "", err
	}
	return cartKey(identity), nil
}

// GetOrCreateCart returns the cart stored under key, persisting an empty
// one first if none exists.
func (s *cartService) GetOrCreateCart(ctx context.Context, key string) (*domain.Cart, error) {
	defer s.repo.lock()()

	_, cart, err := s.loadCart(ctx, "CartService.GetOrCreateCart", key)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// loadCart reads the cart map and returns the cart under key, creating and
// persisting it when absent. Callers hold the repository lock.
func (s *cartService) loadCart(ctx context.Context, op, key string) (map[string]*domain.Cart, *domain.Cart, error) {
	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return nil, nil, err
	}

	cart, ok := carts[key]
	if ok && cart != nil {
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		return carts, cart, nil
	}

	cart = domain.NewCart()
	carts[key] = cart
	if err := s.repo.save(ctx, op, keyCarts, carts); err != nil {
		return nil, nil, err
	}
	return carts, cart, nil
}

// GetCart renders the caller's cart. Lines whose product no longer exists
// are dropped; the total is floored at 1 while the cart has lines.
func (s *cartService) GetCart(ctx context.Context) (*CartView, error) {
	const op = "CartService.GetCart"

	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	defer s.repo.lock()()

	_, cart, err := s.loadCart(ctx, op, cartKey(identity))
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		Items:       make([]CartLineView, 0, len(cart.Items)),
		Subtotal:    decimal.Zero,
		Tax:         decimal.Zero,
		Shipping:    decimal.Zero,
		Discount:    cart.DiscountAmount(),
		Total:       decimal.Zero,
		IsAnonymous: identity == nil,
	}

	for _, item := range cart.Items {
		product := productByID(courses, item.ProductID)
		if product == nil {
			continue
		}
		view.Items = append(view.Items, CartLineView{
			ID:       item.ID,
			Quantity: item.Quantity,
			Product:  *product,
		})
		view.Subtotal = view.Subtotal.Add(product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
		view.Count += item.Quantity
	}

	if cart.AppliedCoupon != nil {
		view.AppliedCoupon = &AppliedCouponView{
			Code:     cart.AppliedCoupon.Code,
			Discount: cart.AppliedCoupon.Discount,
		}
	}

	if len(view.Items) > 0 {
		view.Total = decimal.Max(minimumTotal, view.Subtotal.Sub(view.Discount))
	}

	return view, nil
}

// AddItem adds quantity units of a product, merging into an existing line.
// Quantities below 1 are raised to 1. Stock is checked against the
// requested quantity only, not against what the line already holds.
func (s *cartService) AddItem(ctx context.Context, productID int64, quantity int) error {
	const op = "CartService.AddItem"

	if quantity < 1 {
		quantity = 1
	}

	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	key := cartKey(identity)

	defer s.repo.lock()()

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return err
	}

	product := productByID(courses, productID)
	if product == nil {
		return domain.ErrProductNotFound
	}
	if !product.HasStock(quantity) {
		s.logger.Debug("add to cart rejected", "product_id", productID, "stock", product.Stock, "quantity", quantity)
		return domain.WrapError(domain.ErrInsufficientStock, domain.ECONFLICT, op, "Stock: "+strconv.Itoa(product.Stock))
	}

	carts, cart, err := s.loadCart(ctx, op, key)
	if err != nil {
		return err
	}

	if idx := cart.ProductIndex(productID); idx >= 0 {
		if cart.Items[idx].Quantity > math.MaxInt-quantity {
			return domain.NewValidationError(op, "quantity", "Quantity too large")
		}
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        uuid.NewString(),
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	if err := s.repo.save(ctx, op, keyCarts, carts); err != nil {
		return err
	}

	s.metrics.RecordAddToCart(identity == nil)
	s.logger.Info("item added to cart", "cart_key", key, "product_id", productID, "quantity", quantity)
	return nil
}

// UpdateItemQuantity sets a line's quantity. Zero or less removes the line.
func (s *cartService) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	const op = "CartService.UpdateItemQuantity"

	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	key := cartKey(identity)

	defer s.repo.lock()()

	carts, cart, err := s.loadCart(ctx, op, key)
	if err != nil {
		return err
	}

	idx := cart.ItemIndex(itemID)
	if idx < 0 {
		return domain.ErrCartItemNotFound
	}

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return err
	}

	if product := productByID(courses, cart.Items[idx].ProductID); product != nil && !product.HasStock(quantity) {
		return domain.WrapError(domain.ErrInsufficientStock, domain.ECONFLICT, op, "Stock: "+strconv.Itoa(product.Stock))
	}

	cart.Items[idx].Quantity = quantity
	if err := s.repo.save(ctx, op, keyCarts, carts); err != nil {
		return err
	}

	s.logger.Info("cart item updated", "cart_key", key, "item_id", itemID, "quantity", quantity)
	return nil
}

// RemoveItem drops a line. Unknown ids are a no-op.
func (s *cartService) RemoveItem(ctx context.Context, itemID string) error {
	const op = "CartService.RemoveItem"

	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	key := cartKey(identity)

	defer s.repo.lock()()

	carts, cart, err := s.loadCart(ctx, op, key)
	if err != nil {
		return err
	}

	cart.RemoveItem(itemID)
	if err := s.repo.save(ctx, op, keyCarts, carts); err != nil {
		return err
	}

	s.logger.Debug("cart item removed", "cart_key", key, "item_id", itemID)
	return nil
}

// ClearCart empties the caller's cart and drops its coupon.
func (s *cartService) ClearCart(ctx context.Context) error {
	const op = "CartService.ClearCart"

	identity, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	key := cartKey(identity)

	defer s.repo.lock()()

	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return err
	}

	carts[key] = domain.NewCart()
	if err := s.repo.save(ctx, op, keyCarts, carts); err != nil {
		return err
	}

	s.metrics.RecordCartCleared()
	publish(ctx, s.publisher, s.logger, s.opts.Now(), events.TypeCartCleared, events.CartCleared{CartKey: key})
	s.logger.Info("cart cleared", "cart_key", key)
	return nil
}
