package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// USER / MEMBER DOMAIN TYPES
// =============================================================================

// MemberStatus represents the status of a member record.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrMemberNotFound     = &Error{Code: ENOTFOUND, Message: "Member not found"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "Email is already registered"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrInvalidResetToken  = &Error{Code: EINVALID, Message: "Reset token is invalid or expired"}
)

// UserSettings are per-user preferences.
type UserSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	TwoFactorEnabled   bool `json:"twoFactorEnabled"`
}

// User is a registered account in the user directory.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"passwordHash"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Role         string       `json:"role"`
	CreatedAt    time.Time    `json:"createdAt"`
	Settings     UserSettings `json:"settings"`
}

// Identity returns the session view of the user.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// ResetToken is an outstanding password reset request.
type ResetToken struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
}

// Usable reports whether the token can still reset a password at now.
func (t *ResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// Member aggregates a customer's purchases. Courses may repeat across
// repeat purchases.
type Member struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Status       MemberStatus    `json:"status"`
	Courses      []string        `json:"courses"`
	Spent        decimal.Decimal `json:"spent"`
	LastPurchase time.Time       `json:"lastPurchase"`
}

// RecordPurchase appends an order's titles and accumulates its total.
func (m *Member) RecordPurchase(order *Order) {
	m.Courses = append(m.Courses, order.ProductNames()...)
	m.Spent = m.Spent.Add(order.Total)
	m.LastPurchase = order.CreatedAt
}

// StoreSettings are the storefront-wide pricing inputs.
type StoreSettings struct {
	StoreName    string          `json:"storeName"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Currency     string          `json:"currency"`
}

// DefaultTaxRate applies when the settings carry no rate.
var DefaultTaxRate = decimal.RequireFromString("0.21")

// EffectiveTaxRate returns TaxRate, or DefaultTaxRate when unset.
func (s StoreSettings) EffectiveTaxRate() decimal.Decimal {
	if s.TaxRate.IsZero() {
		return DefaultTaxRate
	}
	return s.TaxRate
}
