package flow

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-io/agent/internal/codec"
	"github.com/sigil-io/agent/internal/models"
)

func testController(t *testing.T) *Controller {
	t.Helper()
	controller, err := NewController("https://auth.testnet.sigil.io", models.InitParams{
		ClientID:    "test-client",
		Network:     models.NetworkTestnet,
		RedirectURL: "http://127.0.0.1:4286/callback",
	})
	require.NoError(t, err)
	return controller
}

func fragmentFor(t *testing.T, payload any) string {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return codec.EncodeBase64Url(data)
}

func TestNewControllerValidation(t *testing.T) {
	valid := models.InitParams{ClientID: "client", Network: models.NetworkMainnet}

	_, err := NewController("https://auth.sigil.io", valid)
	assert.NoError(t, err)

	_, err = NewController("https://auth.sigil.io", models.InitParams{Network: models.NetworkMainnet})
	assert.Error(t, err, "missing client id")

	_, err = NewController("https://auth.sigil.io", models.InitParams{ClientID: "client", Network: "petnet"})
	assert.Error(t, err, "unknown network")

	_, err = NewController("auth.sigil.io", valid)
	assert.Error(t, err, "missing scheme")

	_, err = NewController("://broken", valid)
	assert.Error(t, err, "unparseable url")
}

func TestBuildRequestUrl(t *testing.T) {
	controller := testController(t)

	rawURL, err := controller.BuildRequestUrl(PathLogin, models.Params{
		"loginProvider": "google",
		"mfaLevel":      "default",
		"dropMe":        "anything",
	}, models.Params{
		"mfaLevel": "mandatory",
		"dropMe":   nil,
	})
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "auth.testnet.sigil.io", parsed.Host)
	assert.Equal(t, PathLogin, parsed.Path)
	assert.Empty(t, parsed.RawQuery, "request state must ride the fragment")
	require.NotEmpty(t, parsed.Fragment)

	raw, err := codec.DecodeBase64Url(parsed.Fragment)
	require.NoError(t, err)

	var payload struct {
		Init   models.InitParams `json:"init"`
		Params map[string]any    `json:"params"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, "test-client", payload.Init.ClientID)
	assert.Equal(t, models.NetworkTestnet, payload.Init.Network)
	assert.Equal(t, "http://127.0.0.1:4286/callback", payload.Init.RedirectURL)

	assert.Equal(t, "google", payload.Params["loginProvider"])
	assert.Equal(t, "mandatory", payload.Params["mfaLevel"], "overrides win on collision")
	assert.NotContains(t, payload.Params, "dropMe", "nil overrides drop the key")
}

func TestBuildRequestUrlEmptyParams(t *testing.T) {
	controller := testController(t)

	rawURL, err := controller.BuildRequestUrl(PathLogout, nil, nil)
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, PathLogout, parsed.Path)

	raw, err := codec.DecodeBase64Url(parsed.Fragment)
	require.NoError(t, err)

	// params must encode as an object, never null.
	assert.Contains(t, string(raw), `"params":{}`)
}

func TestParseRedirectLogin(t *testing.T) {
	controller := testController(t)

	fragment := fragmentFor(t, map[string]any{
		"privKey":   "0xdeadbeef",
		"sessionId": "0badc0de",
		"requestId": "req-7",
		"userInfo":  map[string]any{"email": "dev@example.com"},
	})

	outcome, err := controller.ParseRedirect("http://127.0.0.1:4286/callback#" + fragment)
	require.NoError(t, err)

	assert.Equal(t, models.OperationLogin, outcome.Kind)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, "0xdeadbeef", outcome.Response.PrivKey)
	assert.Equal(t, "0badc0de", outcome.Response.SessionID)
	assert.Equal(t, "req-7", outcome.Response.RequestID)
	assert.Contains(t, outcome.Response.Extra, "userInfo")
}

func TestParseRedirectLogoutAck(t *testing.T) {
	controller := testController(t)

	fragment := fragmentFor(t, map[string]any{"privKey": "", "sessionId": "abc"})

	outcome, err := controller.ParseRedirect("http://127.0.0.1:4286/callback#" + fragment)
	require.NoError(t, err)

	assert.Equal(t, models.OperationLogout, outcome.Kind)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, "abc", outcome.Response.SessionID,
		"session id delivered with the ack must be surfaced for persistence")
}

func TestParseRedirectCancelled(t *testing.T) {
	controller := testController(t)

	_, err := controller.ParseRedirect("http://127.0.0.1:4286/callback")
	assert.ErrorIs(t, err, models.ErrCancelled)
}

func TestParseRedirectProviderError(t *testing.T) {
	controller := testController(t)

	t.Run("query error with readable fragment", func(t *testing.T) {
		fragment := fragmentFor(t, map[string]any{"privKey": "", "sessionId": "abc"})

		outcome, err := controller.ParseRedirect(
			"http://127.0.0.1:4286/callback?error=access_denied#" + fragment)
		require.NoError(t, err)

		var providerErr *models.ProviderError
		require.ErrorAs(t, outcome.Err, &providerErr)
		assert.Equal(t, "access_denied", providerErr.Message)
		assert.Equal(t, "abc", outcome.Response.SessionID,
			"delivered state must survive the provider error")
	})

	t.Run("query error without fragment", func(t *testing.T) {
		_, err := controller.ParseRedirect("http://127.0.0.1:4286/callback?error=access_denied")

		var providerErr *models.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, "access_denied", providerErr.Message)
	})

	t.Run("query error with unreadable fragment", func(t *testing.T) {
		_, err := controller.ParseRedirect("http://127.0.0.1:4286/callback?error=access_denied#!!!")

		var providerErr *models.ProviderError
		assert.ErrorAs(t, err, &providerErr, "the provider error is authoritative")
	})

	t.Run("query error outranks payload error", func(t *testing.T) {
		fragment := fragmentFor(t, map[string]any{
			"privKey": "", "sessionId": "", "error": "payload_error",
		})

		outcome, err := controller.ParseRedirect(
			"http://127.0.0.1:4286/callback?error=query_error#" + fragment)
		require.NoError(t, err)

		var providerErr *models.ProviderError
		require.ErrorAs(t, outcome.Err, &providerErr)
		assert.Equal(t, "query_error", providerErr.Message)
	})

	t.Run("payload error field", func(t *testing.T) {
		fragment := fragmentFor(t, map[string]any{
			"privKey": "", "sessionId": "", "error": "user denied consent",
		})

		outcome, err := controller.ParseRedirect("http://127.0.0.1:4286/callback#" + fragment)
		require.NoError(t, err)

		var providerErr *models.ProviderError
		require.ErrorAs(t, outcome.Err, &providerErr)
		assert.Equal(t, "user denied consent", providerErr.Message)
		assert.Equal(t, models.OperationLogin, outcome.Kind)
	})
}

func TestParseRedirectMalformed(t *testing.T) {
	controller := testController(t)

	t.Run("broken base64", func(t *testing.T) {
		_, err := controller.ParseRedirect("http://127.0.0.1:4286/callback#!!!")
		assert.ErrorIs(t, err, models.ErrMalformedEncoding)
	})

	t.Run("fragment is not json", func(t *testing.T) {
		fragment := codec.EncodeBase64Url([]byte("not json"))
		_, err := controller.ParseRedirect("http://127.0.0.1:4286/callback#" + fragment)
		assert.ErrorIs(t, err, models.ErrMalformedEncoding)
	})
}

func TestBuildParseRoundTrip(t *testing.T) {
	controller := testController(t)

	// A request token injected through the extra bag must come back in
	// the response when the provider echoes the params.
	rawURL, err := controller.BuildRequestUrl(PathLogin,
		models.Params{"loginProvider": "github"},
		models.Params{models.RequestTokenParam: "token-123"})
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	raw, err := codec.DecodeBase64Url(parsed.Fragment)
	require.NoError(t, err)

	var payload struct {
		Params map[string]any `json:"params"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Equal(t, "token-123", payload.Params[models.RequestTokenParam])

	fragment := fragmentFor(t, map[string]any{
		"privKey":   "0xdeadbeef",
		"sessionId": "0badc0de",
		"requestId": payload.Params[models.RequestTokenParam],
	})
	outcome, err := controller.ParseRedirect("http://127.0.0.1:4286/callback#" + fragment)
	require.NoError(t, err)
	assert.Equal(t, "token-123", outcome.Response.RequestID)
}
