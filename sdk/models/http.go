// Package models provides public SDK types for the sigil agent.
package models

import internal "github.com/sigil-io/agent/internal/models"

// HealthResponse is the body of the agent's health endpoint.
type HealthResponse = internal.HealthResponse

// MetricsInfo is the body of the agent's metrics endpoint.
type MetricsInfo = internal.MetricsInfo

// ErrorResponse is the error body returned by the agent's HTTP endpoints.
type ErrorResponse = internal.ErrorResponse

// LogEntry is a structured log event captured by the agent.
type LogEntry = internal.LogEntry
