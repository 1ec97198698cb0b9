package storage

import "fmt"

// ============================================================================
// STORAGE ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.

const (
	codeInternal = "internal"
	codeInvalid  = "invalid"
)

// StorageError represents a storage-specific error with a code and message.
type StorageError struct {
	Code    string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the error code.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

var (
	// ErrDatabaseURLRequired is returned when the postgres driver has no DSN.
	ErrDatabaseURLRequired = &StorageError{Code: codeInvalid, Message: "database URL is required"}

	// ErrRedisURLRequired is returned when the redis driver has no URL.
	ErrRedisURLRequired = &StorageError{Code: codeInvalid, Message: "redis URL is required"}

	// ErrFilePathRequired is returned when the file driver has no path.
	ErrFilePathRequired = &StorageError{Code: codeInvalid, Message: "store file path is required"}
)

// ErrUnknownDriver creates an error for unknown store drivers.
func ErrUnknownDriver(driver string) error {
	return &StorageError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("unknown store driver: %s", driver),
	}
}

// ErrCorrupt wraps a document that could not be parsed on open.
func ErrCorrupt(path string, err error) error {
	return &StorageError{
		Code:    codeInternal,
		Message: fmt.Sprintf("store file is corrupt: %s", path),
		Err:     err,
	}
}
