package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthResponseUnmarshalKeepsUnknownFields(t *testing.T) {
	payload := `{
		"privKey": "0xdeadbeef",
		"sessionId": "abc",
		"requestId": "req-1",
		"userInfo": {"email": "dev@example.com"},
		"store": "local"
	}`

	var resp AuthResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	assert.Equal(t, "0xdeadbeef", resp.PrivKey)
	assert.Equal(t, "abc", resp.SessionID)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "local", resp.Extra["store"])
	assert.Contains(t, resp.Extra, "userInfo")
	assert.NotContains(t, resp.Extra, "privKey")

	// Unknown fields must survive a round trip.
	encoded, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "0xdeadbeef", decoded["privKey"])
	assert.Equal(t, "local", decoded["store"])
	assert.Contains(t, decoded, "userInfo")
}

func TestAuthResponseMarshalEmpty(t *testing.T) {
	encoded, err := json.Marshal(&AuthResponse{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	// A blank response still carries the two mandatory fields and
	// omits the optional ones.
	assert.Equal(t, "", decoded["privKey"])
	assert.Equal(t, "", decoded["sessionId"])
	assert.NotContains(t, decoded, "error")
	assert.NotContains(t, decoded, "requestId")
}

func TestAuthResponseIsLogout(t *testing.T) {
	logout := AuthResponse{PrivKey: "", SessionID: "abc"}
	assert.True(t, logout.IsLogout())

	login := AuthResponse{PrivKey: "0xdeadbeef", SessionID: "abc"}
	assert.False(t, login.IsLogout())
}

func TestAuthorizeResponseDecodeMessage(t *testing.T) {
	meta := ShareMetadata{
		EphemeralPublicKey: "04ab",
		IV:                 "00112233445566778899aabbccddeeff",
		Ciphertext:         "c2VjcmV0",
	}
	inner, err := json.Marshal(meta)
	require.NoError(t, err)

	t.Run("object message", func(t *testing.T) {
		resp := AuthorizeResponse{Message: inner}
		got, err := resp.DecodeMessage()
		require.NoError(t, err)
		assert.Equal(t, meta, *got)
	})

	t.Run("string wrapped message", func(t *testing.T) {
		wrapped, err := json.Marshal(string(inner))
		require.NoError(t, err)

		resp := AuthorizeResponse{Message: wrapped}
		got, err := resp.DecodeMessage()
		require.NoError(t, err)
		assert.Equal(t, meta, *got)
	})

	t.Run("empty message", func(t *testing.T) {
		resp := AuthorizeResponse{}
		_, err := resp.DecodeMessage()
		assert.Error(t, err)
	})

	t.Run("string holding junk", func(t *testing.T) {
		wrapped, err := json.Marshal("not json at all")
		require.NoError(t, err)

		resp := AuthorizeResponse{Message: wrapped}
		_, err = resp.DecodeMessage()
		assert.Error(t, err)
	})
}

func TestLogoutRequestEncoding(t *testing.T) {
	encoded, err := json.Marshal(LogoutRequest{
		Key:       "04ab",
		Data:      "blob",
		Signature: "sig",
	})
	require.NoError(t, err)

	// timeout is mandatory on the wire even when zero.
	assert.JSONEq(t, `{"key":"04ab","data":"blob","signature":"sig","timeout":0}`, string(encoded))
}
