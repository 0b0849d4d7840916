// Package provider talks to the session service REST API: fetching the
// encrypted share for an authorized session and posting signed teardown
// requests.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sigil-io/agent/internal/models"
)

// Client is a thin wrapper over the session service endpoints. Safe for
// concurrent use.
type Client struct {
	http *resty.Client
}

func NewClient(baseUrl string, timeout time.Duration) (*Client, error) {
	if len(baseUrl) == 0 {
		return nil, fmt.Errorf("session service base url is required")
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseUrl, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: client}, nil
}

// AuthorizeSession fetches the share metadata held for the session whose
// uncompressed public key is publicKeyHex.
func (c *Client) AuthorizeSession(ctx context.Context, publicKeyHex string) (*models.ShareMetadata, error) {
	var envelope models.AuthorizeResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", publicKeyHex).
		SetResult(&envelope).
		Get("/authorize-session")
	if err != nil {
		return nil, models.NewNetworkError("authorize session", 0, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewNetworkError("authorize session", resp.StatusCode(), responseError(resp))
	}

	return envelope.DecodeMessage()
}

// Logout posts a signed session teardown request.
func (c *Client) Logout(ctx context.Context, request models.LogoutRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request).
		Post("/logout")
	if err != nil {
		return models.NewNetworkError("logout", 0, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.NewNetworkError("logout", resp.StatusCode(), responseError(resp))
	}
	return nil
}

func responseError(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	if len(body) == 0 {
		return fmt.Errorf("unexpected status %s", resp.Status())
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status(), body)
}
