package auth

import "github.com/google/uuid"

// NewResetToken returns an opaque single-use token for password resets.
func NewResetToken() string {
	return uuid.NewString()
}
