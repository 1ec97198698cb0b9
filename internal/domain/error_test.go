package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Code: EINVALID, Message: "invalid coupon"},
			expected: "invalid coupon",
		},
		{
			name:     "with operation",
			err:      &Error{Code: EINVALID, Op: "coupon.apply", Message: "invalid coupon"},
			expected: "coupon.apply: invalid coupon",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "cart.save",
				Message: "failed to save cart",
				Err:     errors.New("disk full"),
			},
			expected: "cart.save: failed to save cart: disk full",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to save cart",
				Err:     errors.New("disk full"),
			},
			expected: "failed to save cart: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "sentinel", err: ErrInsufficientStock, expected: ECONFLICT},
		{name: "wrapped sentinel", err: fmt.Errorf("%w: only 2 left", ErrInsufficientStock), expected: ECONFLICT},
		{name: "validation error", err: NewValidationError("user.register", "email", "invalid"), expected: EINVALID},
		{name: "non-domain error", err: errors.New("boom"), expected: EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "domain error", err: ErrEmptyCart, expected: "Cart is empty"},
		{
			name:     "internal error hides message",
			err:      Internal(errors.New("connection refused"), "store.get", "failed to read carts"),
			expected: "An internal error occurred. Please try again later.",
		},
		{
			name:     "non-domain error hides message",
			err:      errors.New("some internal detail"),
			expected: "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.expected {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	if got := ErrorOp(Errorf(EINVALID, "cart.add", "bad")); got != "cart.add" {
		t.Errorf("ErrorOp() = %q, want %q", got, "cart.add")
	}
	if got := ErrorOp(errors.New("plain")); got != "" {
		t.Errorf("ErrorOp() = %q, want empty", got)
	}
}

func TestWrapError(t *testing.T) {
	t.Run("wraps non-nil error", func(t *testing.T) {
		underlying := errors.New("db error")
		err := WrapError(underlying, EINTERNAL, "order.save", "failed to save order")

		var domainErr *Error
		if !errors.As(err, &domainErr) {
			t.Fatal("WrapError should return *Error")
		}
		if domainErr.Code != EINTERNAL {
			t.Errorf("Code = %q, want %q", domainErr.Code, EINTERNAL)
		}
		if !errors.Is(err, underlying) {
			t.Error("should wrap underlying error")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapError(nil, EINTERNAL, "test", "test"); err != nil {
			t.Errorf("WrapError(nil) should return nil, got %v", err)
		}
	})
}

func TestSentinelsAreClassifiable(t *testing.T) {
	err := fmt.Errorf("%w: minimum is 500", ErrMinimumNotMet)
	if !errors.Is(err, ErrMinimumNotMet) {
		t.Error("wrapped sentinel should match with errors.Is")
	}
	if errors.Is(err, ErrCouponExpired) {
		t.Error("distinct sentinels must not match each other")
	}
	if !IsCode(ErrAuthRequired, EUNAUTHORIZED) {
		t.Error("ErrAuthRequired should carry EUNAUTHORIZED")
	}
	if !IsCode(ErrNotAuthorized, EFORBIDDEN) {
		t.Error("ErrNotAuthorized should carry EFORBIDDEN")
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single field error", func(t *testing.T) {
		err := NewValidationError("user.register", "email", "must be a valid email")

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatal("NewValidationError should return *ValidationError")
		}

		expected := "user.register: email: must be a valid email"
		if ve.Error() != expected {
			t.Errorf("Error() = %q, want %q", ve.Error(), expected)
		}
	})

	t.Run("multiple field errors are sorted", func(t *testing.T) {
		err := NewValidationError("user.register", "password", "too short")
		err = AddFieldError(err, "email", "required")

		expected := "user.register: email: required; password: too short"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
		if len(GetValidationFields(err)) != 2 {
			t.Errorf("Fields count = %d, want 2", len(GetValidationFields(err)))
		}
	})

	t.Run("add field to nil", func(t *testing.T) {
		err := AddFieldError(nil, "name", "required")
		if !IsValidationError(err) {
			t.Fatal("AddFieldError(nil) should return *ValidationError")
		}
	})

	t.Run("non-validation error has no fields", func(t *testing.T) {
		if GetValidationFields(errors.New("x")) != nil {
			t.Error("expected nil fields")
		}
	})
}
