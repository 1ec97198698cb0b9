package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Store    StoreConfig
	Checkout CheckoutConfig
	Events   EventsConfig
	Metrics  MetricsConfig
	Sentry   SentryConfig
	Seed     SeedConfig
}

// StoreConfig selects the key-value backend that persists the storefront.
type StoreConfig struct {
	Driver      string // "memory", "file", "postgres" or "redis"
	Path        string // JSON document for the file driver
	DatabaseUrl string
	RedisUrl    string
	KeyPrefix   string // Namespaces redis keys
}

// CheckoutConfig tunes order creation.
type CheckoutConfig struct {
	// DecrementStock reduces finite product stock when an order is created.
	// Off by default: stock is informational and only validated.
	DecrementStock bool
	DeliveryDays   int
	DefaultCountry string
}

// EventsConfig configures the NATS publisher. An empty URL disables
// publishing.
type EventsConfig struct {
	NatsUrl       string
	SubjectPrefix string
}

type MetricsConfig struct {
	Namespace string
}

// SentryConfig enables error reporting. Disabled unless a DSN is set.
type SentryConfig struct {
	DSN     string
	Enabled bool
	Release string
}

// SeedConfig controls first-run defaults.
type SeedConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", "file"),
			Path:        getEnv("STORE_PATH", "./data/julg.json"),
			DatabaseUrl: getEnv("DATABASE_URL", ""),
			RedisUrl:    getEnv("REDIS_URL", ""),
			KeyPrefix:   getEnv("STORE_KEY_PREFIX", "julg:"),
		},
		Checkout: CheckoutConfig{
			DecrementStock: getEnvBool("CHECKOUT_DECREMENT_STOCK", false),
			DeliveryDays:   int(getEnvInt("DELIVERY_DAYS", 7)),
			DefaultCountry: getEnv("DEFAULT_COUNTRY", "Argentina"),
		},
		Events: EventsConfig{
			NatsUrl:       getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "julg"),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "julg"),
		},
		Sentry: SentryConfig{
			DSN:     getEnv("SENTRY_DSN", ""),
			Enabled: getEnvBool("SENTRY_ENABLED", false),
			Release: getEnv("SENTRY_RELEASE", "dev"),
		},
		Seed: SeedConfig{
			Enabled:       getEnvBool("SEED_DEFAULTS", true),
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@julg.com"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin1234"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	switch cfg.Store.Driver {
	case "memory", "file":
	case "postgres":
		if cfg.Store.DatabaseUrl == "" {
			return fmt.Errorf("DATABASE_URL required when STORE_DRIVER=postgres")
		}
	case "redis":
		if cfg.Store.RedisUrl == "" {
			return fmt.Errorf("REDIS_URL required when STORE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	if cfg.Checkout.DeliveryDays <= 0 {
		cfg.Checkout.DeliveryDays = 7
	}

	if cfg.Env == "prod" && cfg.Seed.Enabled && cfg.Seed.AdminPassword == "admin1234" {
		return fmt.Errorf("ADMIN_PASSWORD must be set in production when seeding defaults")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
