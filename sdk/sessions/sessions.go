// Package sessions provides public SDK types for agent session state.
// These types are re-exported from the internal sessions package to provide
// a stable public API for external consumers.
package sessions

import (
	internal "github.com/sigil-io/agent/internal/sessions"
)

// Status is the session state reported by the agent's status endpoint.
type Status = internal.Status
