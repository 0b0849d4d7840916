// Package keystore persists the small set of values a session leaves
// behind between runs: the session identifier and the share material
// returned on authorization.
package keystore

// Well known keys. Values are stored as opaque strings in whatever
// encoding the writer chose.
const (
	KeySessionID          = "session-id"
	KeyEphemeralPublicKey = "ephemeral-public-key"
	KeyIV                 = "iv"
)

// Store is a flat string map with durable backends. Get returns an empty
// string for absent keys; absence is not an error.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
