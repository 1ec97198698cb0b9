// Package events publishes storefront domain events.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeOrderCompleted = "order.completed"
	TypeUserRegistered = "user.registered"
	TypeCouponApplied  = "coupon.applied"
	TypeCartCleared    = "cart.cleared"
)

// Event is the envelope written to the broker.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	RequestID  string    `json:"requestId,omitempty"`
	Payload    any       `json:"payload"`
}

// OrderCompleted is published after an order and its member record commit.
type OrderCompleted struct {
	OrderID   int64           `json:"orderId"`
	UserID    int64           `json:"userId"`
	UserEmail string          `json:"userEmail"`
	Items     int             `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Coupon    string          `json:"coupon,omitempty"`
}

// UserRegistered is published after a new account is stored.
type UserRegistered struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// CouponApplied is published after a coupon is attached to a cart.
type CouponApplied struct {
	Code    string          `json:"code"`
	CartKey string          `json:"cartKey"`
	Amount  decimal.Decimal `json:"amount"`
}

// CartCleared is published when a shopper empties their cart.
type CartCleared struct {
	CartKey string `json:"cartKey"`
}

// Publisher delivers events. Callers treat failures as non-fatal: the state
// change has already been committed when an event is published.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Event
	Err    error // returned from Publish when set
}

func (p *RecordingPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
