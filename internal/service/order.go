package service

import (
	"context"

	"github.com/dukerupert/julg/internal/domain"
)

// OrderService reads the order ledger.
type OrderService interface {
	// ListOrders returns every order for an admin and the caller's own
	// orders otherwise, most recent first.
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type orderService struct {
	repo     *Repository
	sessions SessionService
}

// NewOrderService creates an OrderService.
func NewOrderService(repo *Repository, sessions SessionService) OrderService {
	return &orderService{repo: repo, sessions: sessions}
}

func (s *orderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.orders(ctx, "OrderService.ListOrders")
	if err != nil {
		return nil, err
	}

	if identity.IsAdmin() {
		return orders, nil
	}

	own := make([]domain.Order, 0)
	for _, o := range orders {
		if o.UserID == identity.ID {
			own = append(own, o)
		}
	}
	return own, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.orders(ctx, "OrderService.GetOrder")
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if !orders[i].VisibleTo(identity) {
			return nil, domain.ErrForbidden
		}
		order := orders[i]
		return &order, nil
	}
	return nil, domain.ErrOrderNotFound
}
