package domain

import (
	"context"
	"testing"
)

func TestIdentityContext(t *testing.T) {
	t.Run("IdentityFromContext returns nil when no identity", func(t *testing.T) {
		if identity := IdentityFromContext(context.Background()); identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})

	t.Run("IdentityFromContext returns identity when set", func(t *testing.T) {
		expected := &Identity{ID: 7, Email: "ana@julg.com", Role: RoleMember}
		ctx := NewContextWithIdentity(context.Background(), expected)

		identity := IdentityFromContext(ctx)
		if identity == nil {
			t.Fatal("expected identity, got nil")
		}
		if identity.ID != expected.ID {
			t.Errorf("expected ID %d, got %d", expected.ID, identity.ID)
		}
	})
}

func TestIdentity_IsAdmin(t *testing.T) {
	var none *Identity
	if none.IsAdmin() {
		t.Error("nil identity must not be admin")
	}
	if (&Identity{Role: RoleMember}).IsAdmin() {
		t.Error("member must not be admin")
	}
	if !(&Identity{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role should be admin")
	}
}

func TestIdentity_FullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ana", "Gómez", "Ana Gómez"},
		{"Ana", "", "Ana"},
		{"", "Gómez", "Gómez"},
		{"", "", ""},
	}
	for _, tt := range tests {
		got := (&Identity{FirstName: tt.first, LastName: tt.last}).FullName()
		if got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := NewContextWithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-1")
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
}
