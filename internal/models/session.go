package models

import (
	"encoding/json"
	"fmt"
)

// AuthResponse is the payload decoded from a redirect fragment. The
// provider may attach fields this client does not know about; those are
// kept verbatim in Extra and survive a re-marshal.
type AuthResponse struct {
	PrivKey   string `json:"privKey"`
	SessionID string `json:"sessionId"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`

	Extra map[string]any `json:"-"`
}

func (r *AuthResponse) UnmarshalJSON(data []byte) error {
	type plain AuthResponse
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "privKey")
	delete(all, "sessionId")
	delete(all, "error")
	delete(all, "requestId")

	*r = AuthResponse(known)
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

func (r AuthResponse) MarshalJSON() ([]byte, error) {
	all := make(map[string]any, len(r.Extra)+4)
	for key, value := range r.Extra {
		all[key] = value
	}
	all["privKey"] = r.PrivKey
	all["sessionId"] = r.SessionID
	if len(r.Error) > 0 {
		all["error"] = r.Error
	}
	if len(r.RequestID) > 0 {
		all["requestId"] = r.RequestID
	}
	return json.Marshal(all)
}

// IsLogout reports whether the response acknowledges a logout rather than
// delivering login material. The provider signals this with a blank key.
func (r *AuthResponse) IsLogout() bool {
	return len(r.PrivKey) == 0
}

// ShareMetadata describes the encrypted share blob held by the session
// service for an authorized session.
type ShareMetadata struct {
	EphemeralPublicKey string `json:"ephemPublicKey"`
	IV                 string `json:"iv"`
	Ciphertext         string `json:"share"`
}

// AuthorizeResponse is the envelope returned by the authorize-session
// endpoint. Message is kept raw because some deployments double encode it
// as a JSON string.
type AuthorizeResponse struct {
	Message json.RawMessage `json:"message"`
}

// DecodeMessage unpacks the share metadata, tolerating both a direct JSON
// object and a JSON string holding serialized JSON.
func (r *AuthorizeResponse) DecodeMessage() (*ShareMetadata, error) {
	raw := r.Message
	if len(raw) == 0 {
		return nil, fmt.Errorf("authorize response carried no message")
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("failed to unwrap message string: %w", err)
		}
		raw = []byte(inner)
	}

	var meta ShareMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode share metadata: %w", err)
	}
	return &meta, nil
}

// LogoutRequest is the signed teardown request posted to the session
// service. Timeout is always zero; the service interprets it as an
// immediate invalidation.
type LogoutRequest struct {
	Key       string `json:"key"`
	Data      string `json:"data"`
	Signature string `json:"signature"`
	Timeout   int    `json:"timeout"`
}
