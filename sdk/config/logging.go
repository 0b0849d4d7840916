package config

import (
	internal "github.com/sigil-io/agent/internal/config"
)

// LoggingConfig controls log level, format and destination for the agent.
type LoggingConfig = internal.LoggingConfig
