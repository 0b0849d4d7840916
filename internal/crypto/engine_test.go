package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/sigil-io/agent/internal/codec"
)

// Uncompressed generator point, the public key for private scalar 1.
const generatorHex = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f817" +
	"98483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"

// The secp256k1 group order, the smallest invalid non-zero scalar.
const curveOrderHex = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"

func TestKeyPairFromSessionID(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		wantErr   bool
	}{
		{name: "scalar one", sessionID: "01"},
		{name: "0x prefix", sessionID: "0x01"},
		{name: "full width", sessionID: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"},
		{name: "empty", sessionID: "", wantErr: true},
		{name: "zero scalar", sessionID: "00", wantErr: true},
		{name: "curve order", sessionID: curveOrderHex, wantErr: true},
		{name: "33 bytes", sessionID: "01" + curveOrderHex, wantErr: true},
		{name: "not hex", sessionID: "zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyPairFromSessionID(tt.sessionID)
			if (err != nil) != tt.wantErr {
				t.Errorf("KeyPairFromSessionID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublicKeyHex(t *testing.T) {
	kp, err := KeyPairFromSessionID("01")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}

	if got := kp.PublicKeyHex(); got != generatorHex {
		t.Errorf("PublicKeyHex() = %s, want %s", got, generatorHex)
	}
}

func TestParsePublicKeyHex(t *testing.T) {
	kp, err := KeyPairFromSessionID("0a")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}

	parsed, err := ParsePublicKeyHex(kp.PublicKeyHex())
	if err != nil {
		t.Fatalf("ParsePublicKeyHex() error = %v", err)
	}
	if !parsed.IsEqual(kp.PublicKey()) {
		t.Errorf("ParsePublicKeyHex() did not round trip")
	}

	for _, bad := range []string{"", "04", "zz", "0200"} {
		if _, err := ParsePublicKeyHex(bad); err == nil {
			t.Errorf("ParsePublicKeyHex(%q) expected error", bad)
		}
	}
}

func TestDeriveSharedKey(t *testing.T) {
	alice, err := KeyPairFromSessionID("0a")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}
	bob, err := KeyPairFromSessionID("0b")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}
	carol, err := KeyPairFromSessionID("0c")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}

	fromAlice := alice.DeriveSharedKey(bob.PublicKey())
	fromBob := bob.DeriveSharedKey(alice.PublicKey())

	if len(fromAlice) != 32 {
		t.Errorf("shared key is %d bytes, want 32", len(fromAlice))
	}
	if !bytes.Equal(fromAlice, fromBob) {
		t.Errorf("shared key is not symmetric: %x vs %x", fromAlice, fromBob)
	}
	if bytes.Equal(fromAlice, alice.DeriveSharedKey(carol.PublicKey())) {
		t.Errorf("different peers produced the same shared key")
	}
}

func TestSignDigest(t *testing.T) {
	kp, err := KeyPairFromSessionID("0042")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}
	digest := Hash256([]byte(`{"test":"payload"}`))

	r, s := kp.SignDigest(digest)
	r2, s2 := kp.SignDigest(digest)
	if r != r2 || s != s2 {
		t.Errorf("signing is not deterministic")
	}

	var rScalar, sScalar secp256k1.ModNScalar
	rScalar.SetByteSlice(r[:])
	sScalar.SetByteSlice(s[:])
	if !secpecdsa.NewSignature(&rScalar, &sScalar).Verify(digest, kp.PublicKey()) {
		t.Errorf("signature did not verify against the session public key")
	}
}

func TestSignatureBlob(t *testing.T) {
	kp, err := KeyPairFromSessionID("0042")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}
	r, s := kp.SignDigest(Hash256([]byte("payload")))

	blob := SignatureBlob(r, s)
	if len(blob) != 130 {
		t.Errorf("blob is %d characters, want 130", len(blob))
	}
	if blob[128:] != "00" {
		t.Errorf("blob suffix = %q, want %q", blob[128:], "00")
	}
	if blob[:64] != codec.EncodeHex(r[:]) {
		t.Errorf("blob r section = %q, want %q", blob[:64], codec.EncodeHex(r[:]))
	}
}

func TestTransportSignature(t *testing.T) {
	kp, err := KeyPairFromSessionID("0042")
	if err != nil {
		t.Fatalf("KeyPairFromSessionID() error = %v", err)
	}
	r, s := kp.SignDigest(Hash256([]byte("payload")))

	encoded, err := TransportSignature(SignatureBlob(r, s))
	if err != nil {
		t.Fatalf("TransportSignature() error = %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("signature is not standard base64: %v", err)
	}
	if len(raw) != 65 {
		t.Errorf("decoded signature is %d bytes, want 65", len(raw))
	}
	if raw[64] != 0 {
		t.Errorf("recovery byte = %d, want 0", raw[64])
	}

	if _, err := TransportSignature("xx"); err == nil {
		t.Errorf("TransportSignature() accepted a non-hex blob")
	}
}

func TestHash256(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a",
		},
		{
			name:  "abc",
			input: "abc",
			want:  "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codec.EncodeHex(Hash256([]byte(tt.input))); got != tt.want {
				t.Errorf("Hash256() = %s, want %s", got, tt.want)
			}
		})
	}
}
