package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// BusinessMetrics holds Prometheus metrics for storefront observability.
// A nil *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded *prometheus.CounterVec
	CartCleared    prometheus.Counter

	// Coupons
	CouponsApplied   *prometheus.CounterVec
	CouponRejections *prometheus.CounterVec

	// Orders
	OrdersCreated    prometheus.Counter
	OrderValue       prometheus.Histogram
	OrderItemCount   prometheus.Histogram
	CheckoutFailures *prometheus.CounterVec

	// Auth & accounts
	Signups     prometheus.Counter
	Logins      prometheus.Counter
	LoginFailed prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewBusinessMetrics(reg prometheus.Registerer, namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "julg"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		// =======================================================================
		// Cart
		// =======================================================================
		CartItemsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add to cart actions",
			},
			[]string{"cart"}, // cart: anonymous, member
		),
		CartCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts emptied by the shopper",
			},
		),

		// =======================================================================
		// Coupons
		// =======================================================================
		CouponsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupons_applied_total",
				Help:      "Total successful coupon applications",
			},
			[]string{"code"},
		),
		CouponRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_rejections_total",
				Help:      "Total rejected coupon applications",
			},
			[]string{"reason"},
		),

		// =======================================================================
		// Orders
		// =======================================================================
		OrdersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order total in store currency",
				Buckets:   []float64{50, 100, 200, 300, 500, 1000, 2500, 5000},
			},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of lines per order",
				Buckets:   []float64{1, 2, 3, 5, 10, 15, 20},
			},
		),
		CheckoutFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_failures_total",
				Help:      "Total failed checkout attempts",
			},
			[]string{"reason"},
		),

		// =======================================================================
		// Auth & accounts
		// =======================================================================
		Signups: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "signups_total",
				Help:      "Total account registrations",
			},
		),
		Logins: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_total",
				Help:      "Total successful logins",
			},
		),
		LoginFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "login_failed_total",
				Help:      "Total failed login attempts",
			},
		),
	}
}

// =============================================================================
// Helper methods for common metric operations
// =============================================================================

// RecordAddToCart records an add to cart action.
func (m *BusinessMetrics) RecordAddToCart(anonymous bool) {
	if m == nil {
		return
	}
	cart := "member"
	if anonymous {
		cart = "anonymous"
	}
	m.CartItemsAdded.WithLabelValues(cart).Inc()
}

// RecordCartCleared records a cart being emptied.
func (m *BusinessMetrics) RecordCartCleared() {
	if m == nil {
		return
	}
	m.CartCleared.Inc()
}

// RecordCouponApplied records a successful coupon application.
func (m *BusinessMetrics) RecordCouponApplied(code string) {
	if m == nil {
		return
	}
	m.CouponsApplied.WithLabelValues(code).Inc()
}

// RecordCouponRejected records a rejected coupon with a short reason.
func (m *BusinessMetrics) RecordCouponRejected(reason string) {
	if m == nil {
		return
	}
	m.CouponRejections.WithLabelValues(reason).Inc()
}

// RecordOrderCreated records a completed order.
func (m *BusinessMetrics) RecordOrderCreated(total decimal.Decimal, itemCount int) {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
	m.OrderValue.Observe(total.InexactFloat64())
	m.OrderItemCount.Observe(float64(itemCount))
}

// RecordCheckoutFailure records a failed checkout.
func (m *BusinessMetrics) RecordCheckoutFailure(reason string) {
	if m == nil {
		return
	}
	m.CheckoutFailures.WithLabelValues(reason).Inc()
}

// RecordSignup records an account registration.
func (m *BusinessMetrics) RecordSignup() {
	if m == nil {
		return
	}
	m.Signups.Inc()
}

// RecordLogin records a login attempt.
func (m *BusinessMetrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	if success {
		m.Logins.Inc()
		return
	}
	m.LoginFailed.Inc()
}
