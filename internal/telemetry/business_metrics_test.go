package telemetry_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewBusinessMetrics(reg, "test")

	m.RecordAddToCart(true)
	m.RecordAddToCart(false)
	m.RecordAddToCart(false)
	m.RecordCartCleared()
	m.RecordCouponApplied("WELCOME10")
	m.RecordCouponRejected("expired")
	m.RecordCheckoutFailure("empty_cart")
	m.RecordSignup()
	m.RecordLogin(true)
	m.RecordLogin(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartItemsAdded.WithLabelValues("anonymous")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartItemsAdded.WithLabelValues("member")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartCleared))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CouponsApplied.WithLabelValues("WELCOME10")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CouponRejections.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutFailures.WithLabelValues("empty_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signups))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginFailed))
}

func TestBusinessMetrics_OrderCreated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewBusinessMetrics(reg, "")

	m.RecordOrderCreated(decimal.NewFromInt(222), 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated))
	count, err := testutil.GatherAndCount(reg, "julg_business_order_value", "julg_business_order_item_count")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *telemetry.BusinessMetrics

	assert.NotPanics(t, func() {
		m.RecordAddToCart(true)
		m.RecordCartCleared()
		m.RecordCouponApplied("X")
		m.RecordCouponRejected("x")
		m.RecordOrderCreated(decimal.NewFromInt(1), 1)
		m.RecordCheckoutFailure("x")
		m.RecordSignup()
		m.RecordLogin(false)
	})
}

func TestCaptureError_DisabledIsNoop(t *testing.T) {
	assert.False(t, telemetry.IsEnabled())
	assert.NotPanics(t, func() {
		telemetry.CaptureError(assert.AnError)
		telemetry.CaptureErrorWithUser(assert.AnError, &domain.Identity{ID: 1, Email: "a@b.c"})
	})
}

func TestLogMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewBusinessMetrics(reg, "shop")
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "unrelated"})
	reg.MustRegister(other)
	other.Inc()

	m.RecordAddToCart(false)
	m.RecordAddToCart(false)
	m.RecordOrderCreated(decimal.RequireFromString("121"), 2)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, telemetry.LogMetrics(reg, "shop", logger))

	out := buf.String()
	assert.Contains(t, out, "name=shop_business_cart_items_added_total cart=member value=2")
	assert.Contains(t, out, "name=shop_business_orders_created_total value=1")
	assert.Contains(t, out, "count=1 sum=121")
	assert.NotContains(t, out, "other_total")
}
