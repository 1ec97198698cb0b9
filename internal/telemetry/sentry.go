package telemetry

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	// DSN is required when Enabled is true
	DSN         string
	Enabled     bool
	Environment string
	Release     string
}

var sentryEnabled atomic.Bool

// InitSentry initializes the Sentry client.
// The returned func flushes buffered events and should be deferred by main.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	sentryEnabled.Store(false)

	if !cfg.Enabled {
		logger.Info("error reporting disabled")
		return func() {}, nil
	}
	if cfg.DSN == "" {
		logger.Warn("SENTRY_ENABLED set without SENTRY_DSN, error reporting disabled")
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	sentryEnabled.Store(true)

	logger.Info("error reporting enabled", "environment", cfg.Environment, "release", cfg.Release)
	return func() { sentry.Flush(flushTimeout) }, nil
}

// IsEnabled reports whether events are being sent.
func IsEnabled() bool {
	return sentryEnabled.Load()
}

// CaptureError reports err with the op and code of the wrapped domain error
// as tags. Safe to call when reporting is disabled.
func CaptureError(err error, extras ...map[string]interface{}) {
	CaptureErrorWithUser(err, nil, extras...)
}

// CaptureErrorWithUser is CaptureError with the acting user attached.
// A nil identity reports the event as anonymous.
func CaptureErrorWithUser(err error, identity *domain.Identity, extras ...map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_code", domain.ErrorCode(err))
		if op := domain.ErrorOp(err); op != "" {
			scope.SetTag("op", op)
		}
		if identity != nil {
			scope.SetUser(sentry.User{
				ID:    strconv.FormatInt(identity.ID, 10),
				Email: identity.Email,
			})
			scope.SetTag("role", identity.Role)
		}
		for _, m := range extras {
			for key, value := range m {
				scope.SetExtra(key, value)
			}
		}
		sentry.CaptureException(err)
	})
}

// RecoverWithSentry reports a panic and re-panics.
// Use: defer telemetry.RecoverWithSentry()
func RecoverWithSentry() {
	if r := recover(); r != nil {
		if IsEnabled() {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(flushTimeout)
		}
		panic(r)
	}
}
