package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.False(t, cfg.Checkout.DecrementStock)
	assert.Equal(t, 7, cfg.Checkout.DeliveryDays)
	assert.Equal(t, "Argentina", cfg.Checkout.DefaultCountry)
	assert.Equal(t, "julg", cfg.Events.SubjectPrefix)
	assert.True(t, cfg.Seed.Enabled)
}

func TestNewConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "trace")
	t.Setenv("ADMIN_PASSWORD", "a-real-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfig_DriverRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "postgres without url", env: map[string]string{"STORE_DRIVER": "postgres"}, wantErr: "DATABASE_URL"},
		{name: "redis without url", env: map[string]string{"STORE_DRIVER": "redis"}, wantErr: "REDIS_URL"},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}, wantErr: "unknown STORE_DRIVER"},
		{name: "prod with default admin password", env: map[string]string{"STORE_DRIVER": "memory", "ENV": "prod"}, wantErr: "ADMIN_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfig_CheckoutOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CHECKOUT_DECREMENT_STOCK", "true")
	t.Setenv("DELIVERY_DAYS", "3")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Checkout.DecrementStock)
	assert.Equal(t, 3, cfg.Checkout.DeliveryDays)
}

func TestNewLogger(t *testing.T) {
	t.Run("prod writes JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "prod", "info")
		logger.Info("order created", "order_id", 42)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "order created", record["msg"])
		assert.Equal(t, "julg", record["app"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "dev", "warn")
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		assert.False(t, strings.Contains(out, "hidden"))
		assert.True(t, strings.Contains(out, "shown"))
	})
}
