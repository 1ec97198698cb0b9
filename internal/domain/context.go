// Package domain provides the storefront's core types, error taxonomy and
// context helpers.
//
// The identity helpers let callers attach an already-resolved session to a
// context so service code never reaches for the persisted session pointer
// when the caller knows who is acting.
package domain

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	identityContextKey contextKey = iota
	requestIDContextKey
)

// Roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Identity is the authenticated user acting on the store.
type Identity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
// A nil identity is never an admin.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// FullName joins first and last name, trimming the gap when one is empty.
func (i *Identity) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// NewContextWithIdentity returns a new context with the identity attached.
func NewContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity from context.
// Returns nil if no identity is present.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityContextKey).(*Identity)
	return identity
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
