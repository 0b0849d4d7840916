package models

import (
	"errors"
	"fmt"
)

// Callers branch on these with errors.Is / errors.As, never on message text.
var (
	// ErrCancelled means the redirect came back without a response
	// fragment. The user closed or abandoned the provider page.
	ErrCancelled = fmt.Errorf("login cancelled: redirect carried no response fragment")

	// ErrMalformedEncoding wraps base64url and hex decode failures.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrNoSession is returned when an operation needs a stored session
	// key and none is available.
	ErrNoSession = fmt.Errorf("no active session: login first")
)

// ProviderError is an explicit failure raised by the identity provider,
// either through the error query parameter of the redirect or the error
// field of the response payload.
type ProviderError struct {
	Message string
}

func NewProviderError(message string) *ProviderError {
	return &ProviderError{Message: message}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s", e.Message)
}

// CryptoError wraps key material and cipher failures with the operation
// that produced them.
type CryptoError struct {
	Op  string
	Err error
}

func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto %s failed: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NetworkError wraps transport failures against the provider API. Status is
// zero when the request never produced a response.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func NewNetworkError(op string, status int, err error) *NetworkError {
	return &NetworkError{Op: op, Status: status, Err: err}
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
