package services

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialNotFound credential does not exist
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrNotCredentialIssuer the caller is not the issuer of the credential
	ErrNotCredentialIssuer = errors.New("only the issuer can revoke this credential")
	// ErrIdentityNotFound the account has no decentralized identifier
	ErrIdentityNotFound = errors.New("DID not found")
	// ErrDIDAlreadyExists the account already has a decentralized identifier
	ErrDIDAlreadyExists = errors.New("DID already exists for this wallet")
	// ErrUserNotFound user does not exist
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError is returned when a request is missing or has malformed required input.
// It is always detected before any I/O.
type ValidationError struct {
	Message string
}

// Error satisfies error interface for ValidationError
func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
