// Package models provides public SDK types for the sigil agent.
package models

import internal "github.com/sigil-io/agent/internal/models"

// Network selects the provider and session service environment.
type Network = internal.Network

// Networks known to the agent.
const (
	NetworkMainnet = internal.NetworkMainnet
	NetworkTestnet = internal.NetworkTestnet
	NetworkCyan    = internal.NetworkCyan
)
