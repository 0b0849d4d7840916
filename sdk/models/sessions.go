// Package models provides public SDK types for the sigil agent.
package models

import internal "github.com/sigil-io/agent/internal/models"

// AuthResponse is the payload carried in the fragment of a login redirect.
// It holds the provider session key material and result of the flow.
type AuthResponse = internal.AuthResponse

// ShareMetadata describes an encrypted key share held by the session
// service, together with the material needed to decrypt it.
type ShareMetadata = internal.ShareMetadata

// AuthorizeResponse is the session service's answer to an authorize
// request. Its message field decodes into a ShareMetadata.
type AuthorizeResponse = internal.AuthorizeResponse

// LogoutRequest is the signed invalidation request sent to the session
// service when a session ends.
type LogoutRequest = internal.LogoutRequest
