// Package crypto holds the session key operations: secp256k1 key
// recovery from a session identifier, ECDH shared-key derivation, the
// deterministic signature format the session service verifies, and the
// AES-CBC share cipher.
package crypto

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/sigil-io/agent/internal/codec"
	"github.com/sigil-io/agent/internal/models"
)

// SessionKeyPair wraps the secp256k1 scalar recovered from a session
// identifier. The identifier itself is the private key, so instances must
// never be logged or serialized.
type SessionKeyPair struct {
	priv *secp256k1.PrivateKey
}

// KeyPairFromSessionID interprets a hex session identifier as a secp256k1
// private scalar. Identifiers shorter than 32 bytes are treated as
// left-zero-padded; zero and out-of-range scalars are rejected.
func KeyPairFromSessionID(sessionID string) (*SessionKeyPair, error) {
	raw, err := codec.DecodeHex(sessionID)
	if err != nil {
		return nil, models.NewCryptoError("session key decode", err)
	}
	if len(raw) == 0 {
		return nil, models.NewCryptoError("session key decode",
			fmt.Errorf("empty session identifier"))
	}
	if len(raw) > 32 {
		return nil, models.NewCryptoError("session key decode",
			fmt.Errorf("identifier is %d bytes, scalar holds at most 32", len(raw)))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow {
		return nil, models.NewCryptoError("session key decode",
			fmt.Errorf("identifier exceeds the curve order"))
	}
	if scalar.IsZero() {
		return nil, models.NewCryptoError("session key decode",
			fmt.Errorf("identifier is the zero scalar"))
	}

	return &SessionKeyPair{priv: secp256k1.NewPrivateKey(&scalar)}, nil
}

// PublicKey returns the curve point for ECDH and verification.
func (kp *SessionKeyPair) PublicKey() *secp256k1.PublicKey {
	return kp.priv.PubKey()
}

// PublicKeyHex is the uncompressed 65-byte public key as lowercase hex,
// the form the session service expects in its key fields.
func (kp *SessionKeyPair) PublicKeyHex() string {
	return codec.EncodeHex(kp.priv.PubKey().SerializeUncompressed())
}

// DeriveSharedKey runs ECDH against a peer key and hashes the shared X
// coordinate with SHA-512, keeping the first 32 bytes as the AES key.
func (kp *SessionKeyPair) DeriveSharedKey(peer *secp256k1.PublicKey) []byte {
	shared := secp256k1.GenerateSharedSecret(kp.priv, peer)
	digest := sha512.Sum512(shared)
	return digest[:32]
}

// SignDigest produces a deterministic ECDSA signature over a prehashed
// digest, returned as fixed-width scalar bytes.
func (kp *SessionKeyPair) SignDigest(digest []byte) (r, s [32]byte) {
	sig := secpecdsa.Sign(kp.priv, digest)

	rScalar := sig.R()
	sScalar := sig.S()
	return rScalar.Bytes(), sScalar.Bytes()
}

// ParsePublicKeyHex parses a hex encoded secp256k1 point in any of the
// serialized forms, with or without a 0x prefix.
func ParsePublicKeyHex(encoded string) (*secp256k1.PublicKey, error) {
	raw, err := codec.DecodeHex(encoded)
	if err != nil {
		return nil, models.NewCryptoError("public key decode", err)
	}

	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, models.NewCryptoError("public key decode", err)
	}
	return pub, nil
}

// SignatureBlob renders a signature in the service's wire layout: r and s
// as 64 hex characters each, then a fixed 00 recovery placeholder.
func SignatureBlob(r, s [32]byte) string {
	return codec.EncodeHex(r[:]) + codec.EncodeHex(s[:]) + "00"
}

// TransportSignature converts a hex signature blob to the standard base64
// form carried in the signature field of signed requests.
func TransportSignature(blob string) (string, error) {
	raw, err := codec.DecodeHex(blob)
	if err != nil {
		return "", models.NewCryptoError("signature encode", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Hash256 is the SHA3-256 digest used for request body integrity.
func Hash256(data []byte) []byte {
	digest := sha3.Sum256(data)
	return digest[:]
}
