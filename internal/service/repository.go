package service

import (
	"context"
	"sync"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/storage"
)

// Persisted keys. Each holds one JSON value read and written as a whole.
const (
	keyUsers         = "users"
	keyCourses       = "courses"
	keyOrders        = "orders"
	keyCarts         = "carts"
	keyMembers       = "members"
	keyCoupons       = "coupons"
	keyCategories    = "categories"
	keyStoreSettings = "storeSettings"
	keyResources     = "resources"
	keyResetTokens   = "resetTokens"
	keyCurrentUser   = "currentUser"
)

// Repository is the typed view of the key-value store shared by every
// service. Mutating operations hold its mutex for the whole
// read-modify-write cycle, so concurrent callers never clobber each other.
type Repository struct {
	store storage.Store
	mu    sync.Mutex
}

// NewRepository wraps store.
func NewRepository(store storage.Store) *Repository {
	return &Repository{store: store}
}

// lock acquires the repository mutex and returns its release.
func (r *Repository) lock() func() {
	r.mu.Lock()
	return r.mu.Unlock
}

// load reads key into a value pre-filled with def.
func load[T any](ctx context.Context, r *Repository, op, key string, def T) (T, error) {
	v := def
	if _, err := r.store.Get(ctx, key, &v); err != nil {
		return def, domain.Internal(err, op, "failed to read "+key)
	}
	return v, nil
}

func (r *Repository) users(ctx context.Context, op string) ([]domain.User, error) {
	return load(ctx, r, op, keyUsers, []domain.User{})
}

func (r *Repository) courses(ctx context.Context, op string) ([]domain.Product, error) {
	return load(ctx, r, op, keyCourses, []domain.Product{})
}

func (r *Repository) orders(ctx context.Context, op string) ([]domain.Order, error) {
	return load(ctx, r, op, keyOrders, []domain.Order{})
}

func (r *Repository) carts(ctx context.Context, op string) (map[string]*domain.Cart, error) {
	carts, err := load(ctx, r, op, keyCarts, map[string]*domain.Cart{})
	if err != nil {
		return nil, err
	}
	if carts == nil {
		carts = map[string]*domain.Cart{}
	}
	return carts, nil
}

func (r *Repository) members(ctx context.Context, op string) ([]domain.Member, error) {
	return load(ctx, r, op, keyMembers, []domain.Member{})
}

func (r *Repository) coupons(ctx context.Context, op string) ([]domain.Coupon, error) {
	return load(ctx, r, op, keyCoupons, []domain.Coupon{})
}

func (r *Repository) categories(ctx context.Context, op string) ([]string, error) {
	return load(ctx, r, op, keyCategories, []string{})
}

func (r *Repository) resources(ctx context.Context, op string) ([]domain.Resource, error) {
	return load(ctx, r, op, keyResources, []domain.Resource{})
}

func (r *Repository) resetTokens(ctx context.Context, op string) ([]domain.ResetToken, error) {
	return load(ctx, r, op, keyResetTokens, []domain.ResetToken{})
}

func (r *Repository) settings(ctx context.Context, op string) (domain.StoreSettings, error) {
	return load(ctx, r, op, keyStoreSettings, domain.StoreSettings{})
}

func (r *Repository) currentUser(ctx context.Context, op string) (*domain.Identity, error) {
	return load[*domain.Identity](ctx, r, op, keyCurrentUser, nil)
}

// save writes a single key.
func (r *Repository) save(ctx context.Context, op, key string, value any) error {
	if err := r.store.Set(ctx, key, value); err != nil {
		return domain.Internal(err, op, "failed to write "+key)
	}
	return nil
}

// commit writes several keys all-or-nothing.
func (r *Repository) commit(ctx context.Context, op string, values map[string]any) error {
	if err := r.store.SetMany(ctx, values); err != nil {
		return domain.Internal(err, op, "failed to commit changes")
	}
	return nil
}

// exists reports whether key has been written.
func (r *Repository) exists(ctx context.Context, op, key string) (bool, error) {
	var raw any
	found, err := r.store.Get(ctx, key, &raw)
	if err != nil {
		return false, domain.Internal(err, op, "failed to read "+key)
	}
	return found, nil
}
