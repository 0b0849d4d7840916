// Package flow implements the browser handoff wire format: building the
// login and logout URLs whose fragment carries the request payload, and
// classifying the redirect that eventually comes back.
package flow

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sigil-io/agent/internal/codec"
	"github.com/sigil-io/agent/internal/models"
)

// Request paths on the auth origin.
const (
	PathLogin  = "/login"
	PathLogout = "/logout"
)

// requestPayload is the document encoded into the URL fragment. The init
// section is static client configuration; params vary per request.
type requestPayload struct {
	Init   models.InitParams `json:"init"`
	Params map[string]any    `json:"params"`
}

// Outcome is a successfully decoded redirect. Err carries a provider
// reported failure; Response is still populated alongside it so state the
// provider delivered with the failure is not lost.
type Outcome struct {
	Kind     models.OperationKind
	Response *models.AuthResponse
	Err      error
}

// Controller builds and parses handoff URLs for one client configuration.
// It holds no mutable state and is safe for concurrent use.
type Controller struct {
	baseURL *url.URL
	init    models.InitParams
}

func NewController(baseUrl string, init models.InitParams) (*Controller, error) {
	if len(init.ClientID) == 0 {
		return nil, fmt.Errorf("client id is required")
	}
	if _, err := models.ParseNetwork(string(init.Network)); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid auth base url %q: %w", baseUrl, err)
	}
	if len(parsed.Scheme) == 0 || len(parsed.Host) == 0 {
		return nil, fmt.Errorf("auth base url %q needs a scheme and host", baseUrl)
	}

	return &Controller{baseURL: parsed, init: init}, nil
}

// BuildRequestUrl serializes the init section and the merged parameter
// bags into the fragment of the target URL. extraParams override
// loginParams on key collisions. Nothing request specific ever lands in
// the query string; fragments stay out of server logs on the way to the
// auth origin.
func (c *Controller) BuildRequestUrl(path string, loginParams, extraParams models.Params) (string, error) {
	payload := requestPayload{
		Init:   c.init,
		Params: loginParams.Merge(extraParams).AsMap(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request payload: %w", err)
	}

	target := c.baseURL.JoinPath(path)
	target.RawQuery = ""
	target.Fragment = codec.EncodeBase64Url(data)
	return target.String(), nil
}

// ParseRedirect classifies a redirect URL captured from the browser.
//
// A hard failure is returned as an error: the user abandoned the flow, or
// the payload could not be decoded. An error query parameter set by the
// provider is authoritative; when present it is reported even if the
// fragment is missing or unreadable, and otherwise attached to the
// decoded outcome so the caller still sees any delivered state.
func (c *Controller) ParseRedirect(rawURL string) (*Outcome, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedEncoding, err)
	}

	var providerErr error
	if message := parsed.Query().Get("error"); len(message) > 0 {
		providerErr = models.NewProviderError(message)
	}

	if len(parsed.Fragment) == 0 {
		if providerErr != nil {
			return nil, providerErr
		}
		return nil, models.ErrCancelled
	}

	raw, err := codec.DecodeBase64Url(parsed.Fragment)
	if err != nil {
		if providerErr != nil {
			return nil, providerErr
		}
		return nil, err
	}

	var response models.AuthResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		if providerErr != nil {
			return nil, providerErr
		}
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedEncoding, err)
	}

	outcome := &Outcome{Response: &response}
	switch {
	case providerErr != nil:
		outcome.Kind = models.OperationLogin
		outcome.Err = providerErr
	case len(response.Error) > 0:
		outcome.Kind = models.OperationLogin
		outcome.Err = models.NewProviderError(response.Error)
	case response.IsLogout():
		outcome.Kind = models.OperationLogout
	default:
		outcome.Kind = models.OperationLogin
	}
	return outcome, nil
}
