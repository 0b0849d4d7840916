// Package codec implements the text encodings of the login wire format:
// unpadded url-safe base64 for request and response payloads, and hex for
// key material. Decoders are tolerant of the variants the provider is
// known to emit; encoders always produce the canonical form.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sigil-io/agent/internal/models"
)

// EncodeBase64Url encodes raw bytes without padding. Canonical form for
// everything this client places in a URL fragment.
func EncodeBase64Url(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeBase64Url decodes url-safe base64 with or without padding. Mixed
// or broken padding and standard-alphabet input are rejected.
func DecodeBase64Url(encoded string) ([]byte, error) {
	encoding := base64.RawURLEncoding
	if strings.Contains(encoded, "=") {
		encoding = base64.URLEncoding
	}

	raw, err := encoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedEncoding, err)
	}
	return raw, nil
}

// EncodeHex encodes raw bytes as lowercase hex, no prefix.
func EncodeHex(raw []byte) string {
	return hex.EncodeToString(raw)
}

// DecodeHex decodes a hex string, tolerating a 0x prefix and mixed case.
func DecodeHex(encoded string) ([]byte, error) {
	trimmed := strings.TrimPrefix(encoded, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")

	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedEncoding, err)
	}
	return raw, nil
}
