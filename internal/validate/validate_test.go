package validate_test

import (
	"testing"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin member"`
	Internal string `json:"-" validate:"max=1"`
}

func TestStruct_Valid(t *testing.T) {
	err := validate.Struct("UserService.Register", signup{Email: "ana@julg.com", Password: "12345678"})
	assert.NoError(t, err)
}

func TestStruct_FieldErrors(t *testing.T) {
	err := validate.Struct("UserService.Register", signup{Email: "nope", Password: "short", Role: "owner"})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	fields := domain.GetValidationFields(err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])
	assert.Equal(t, "must be one of: admin member", fields["role"])
	assert.Contains(t, err.Error(), "UserService.Register: ")
}

func TestStruct_Required(t *testing.T) {
	err := validate.Struct("op", signup{})

	fields := domain.GetValidationFields(err)
	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "is required", fields["password"])
}

func TestStruct_ShippingInfoLimits(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	err := validate.Struct("CheckoutService.CreateOrder", domain.ShippingInfo{City: string(long)})
	fields := domain.GetValidationFields(err)
	assert.Equal(t, "must be at most 255 characters", fields["city"])
}

func TestVar(t *testing.T) {
	assert.NoError(t, validate.Var("op", "taxRate", 0.21, "gte=0,lte=1"))

	err := validate.Var("op", "taxRate", 1.5, "gte=0,lte=1")
	fields := domain.GetValidationFields(err)
	assert.Equal(t, "must be less than or equal to 1", fields["taxRate"])
}
