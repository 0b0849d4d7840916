// Package models provides public SDK types for the sigil agent.
package models

import internal "github.com/sigil-io/agent/internal/models"

// Sentinel errors surfaced by the agent. Match with errors.Is.
var (
	ErrCancelled         = internal.ErrCancelled
	ErrMalformedEncoding = internal.ErrMalformedEncoding
	ErrNoSession         = internal.ErrNoSession
)

// ProviderError is an explicit failure raised by the identity provider.
type ProviderError = internal.ProviderError

// CryptoError wraps key material and cipher failures.
type CryptoError = internal.CryptoError

// NetworkError wraps transport failures against the session service.
type NetworkError = internal.NetworkError
