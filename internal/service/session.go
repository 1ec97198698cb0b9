package service

import (
	"context"

	"github.com/dukerupert/julg/internal/domain"
)

// SessionService resolves who is calling.
type SessionService interface {
	// Current returns the identity attached to ctx, else the persisted
	// session pointer, else nil.
	Current(ctx context.Context) (*domain.Identity, error)

	// RequireUser returns the current identity or domain.ErrAuthRequired.
	RequireUser(ctx context.Context) (*domain.Identity, error)

	// RequireAdmin returns domain.ErrAuthRequired without a session and
	// domain.ErrNotAuthorized for a non-admin.
	RequireAdmin(ctx context.Context) (*domain.Identity, error)
}

type sessionService struct {
	repo *Repository
}

// NewSessionService creates a SessionService reading the persisted
// currentUser pointer from repo.
func NewSessionService(repo *Repository) SessionService {
	return &sessionService{repo: repo}
}

func (s *sessionService) Current(ctx context.Context) (*domain.Identity, error) {
	if identity := domain.IdentityFromContext(ctx); identity != nil {
		return identity, nil
	}
	return s.repo.currentUser(ctx, "SessionService.Current")
}

func (s *sessionService) RequireUser(ctx context.Context) (*domain.Identity, error) {
	identity, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, domain.ErrAuthRequired
	}
	return identity, nil
}

func (s *sessionService) RequireAdmin(ctx context.Context) (*domain.Identity, error) {
	identity, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}
	return identity, nil
}

// cartKey resolves the cart map key for an identity.
func cartKey(identity *domain.Identity) string {
	if identity == nil {
		return domain.AnonymousCartKey
	}
	return domain.CartKeyForUser(identity.ID)
}
