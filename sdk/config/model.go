// Package config provides public SDK types for agent configuration.
// These types are re-exported from the internal config package to provide
// a stable public API for external consumers.
package config

import (
	internal "github.com/sigil-io/agent/internal/config"
)

// Config is the full agent configuration as loaded from files, the
// environment and defaults.
type Config = internal.Config

// ProviderConfig selects the identity provider environment and carries
// the client identity presented to it.
type ProviderConfig = internal.ProviderConfig

// ServerConfig describes the local web service the agent runs to catch
// login redirects.
type ServerConfig = internal.ServerConfig

// ServerLimitsConfig bounds request handling on the local web service.
type ServerLimitsConfig = internal.ServerLimitsConfig

// SecurityConfig groups the security settings of the local web service.
type SecurityConfig = internal.SecurityConfig

// CORSConfig controls cross origin access to the local web service.
type CORSConfig = internal.CORSConfig

// KeystoreConfig locates and protects the persisted session key.
type KeystoreConfig = internal.KeystoreConfig
