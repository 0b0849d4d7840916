// Package models provides public SDK types for the sigil agent.
// These types are re-exported from the internal models package to provide
// a stable public API for external consumers.
package models

import internal "github.com/sigil-io/agent/internal/models"

// RequestTokenParam is the parameter key that correlates a request with
// the redirect that answers it.
const RequestTokenParam = internal.RequestTokenParam

// OperationKind names the kind of flow a request starts.
type OperationKind = internal.OperationKind

// Operation kinds accepted by the agent.
const (
	OperationLogin  = internal.OperationLogin
	OperationLogout = internal.OperationLogout
)

// InitParams is the static client configuration carried in the init
// section of every request payload.
type InitParams = internal.InitParams

// Params is a free-form parameter bag for the params section of a
// request payload.
type Params = internal.Params
