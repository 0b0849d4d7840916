package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sigil-io/agent/internal/config"
	"github.com/sigil-io/agent/internal/models"
	"github.com/sigil-io/agent/internal/sessions"
)

// agentClient talks to a running agent over its local HTTP endpoints.
type agentClient struct {
	http *resty.Client
}

func newAgentClient(cfg *config.Config) *agentClient {
	return &agentClient{
		http: resty.New().
			SetBaseURL(cfg.GetLocalServerUrl()).
			SetTimeout(2 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// Healthy reports whether an agent answers on the configured address.
func (a *agentClient) Healthy(ctx context.Context) bool {
	resp, err := a.http.R().
		SetContext(ctx).
		Get("/health")
	return err == nil && resp.StatusCode() == http.StatusOK
}

func (a *agentClient) Status(ctx context.Context) (sessions.Status, error) {
	var status sessions.Status

	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/status")
	if err != nil {
		return status, fmt.Errorf("failed to reach the agent: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return status, fmt.Errorf("agent status request failed: %s", resp.Status())
	}
	return status, nil
}

func (a *agentClient) Metrics(ctx context.Context) (models.MetricsInfo, error) {
	var metrics models.MetricsInfo

	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&metrics).
		Get("/metrics")
	if err != nil {
		return metrics, fmt.Errorf("failed to reach the agent: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return metrics, fmt.Errorf("agent metrics request failed: %s", resp.Status())
	}
	return metrics, nil
}

func (a *agentClient) Logs(ctx context.Context) ([]*models.LogEntry, error) {
	var body struct {
		Logs []*models.LogEntry `json:"logs"`
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/logs")
	if err != nil {
		return nil, fmt.Errorf("failed to reach the agent: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("agent logs request failed: %s", resp.Status())
	}
	return body.Logs, nil
}

// AwaitCallback blocks until the agent has processed another redirect
// callback, counting from sinceCount.
func (a *agentClient) AwaitCallback(ctx context.Context, sinceCount int64) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics, err := a.Metrics(ctx)
			if err != nil {
				return err
			}
			if metrics.CallbackRequests > sinceCount {
				return nil
			}
		}
	}
}
