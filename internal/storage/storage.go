package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/julg/internal"
)

// Store defines the key-value contract the storefront persists through.
// Every value is JSON encoded and read or written as a whole; there are no
// field-level updates.
type Store interface {
	// Get decodes the value stored under key into dst.
	// Returns found=false and leaves dst untouched when the key is absent,
	// so callers pre-fill dst with their default.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value any) error

	// SetMany replaces several keys at once. Either every key is written
	// or none is.
	SetMany(ctx context.Context, values map[string]any) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// New creates a Store implementation based on configuration.
func New(ctx context.Context, cfg internal.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "file":
		return NewLocalStore(cfg.Path)
	case "postgres":
		return OpenPostgresStore(ctx, cfg.DatabaseUrl)
	case "redis":
		return OpenRedisStore(ctx, cfg.RedisUrl, cfg.KeyPrefix)
	default:
		return nil, ErrUnknownDriver(cfg.Driver)
	}
}

// encodeAll marshals every value up front so a bad value aborts a batch
// before anything is written.
func encodeAll(values map[string]any) (map[string][]byte, error) {
	out := make(map[string][]byte, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}

func decode(key string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}
