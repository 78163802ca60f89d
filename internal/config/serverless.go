package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects the entry point the binary runs.
type Mode string

const (
	// ModeServer runs a standing HTTP listener.
	ModeServer Mode = "server"
	// ModeLambda runs the per-invocation FaaS handler.
	ModeLambda Mode = "lambda"
)

// DefaultDatabasePath is the sqlite file used when DB_PATH is not set.
const DefaultDatabasePath = "./data/queue.db"

// lambdaDatabaseDir is the only writable directory inside a function container.
const lambdaDatabaseDir = "/tmp"

// ParseMode validates an APP_MODE value. The mode is always chosen explicitly by
// configuration or flag, never inferred from the process environment.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeServer:
		return ModeServer, nil
	case ModeLambda:
		return ModeLambda, nil
	default:
		return "", fmt.Errorf("invalid APP_MODE %q: expected %q or %q", value, ModeServer, ModeLambda)
	}
}

// IsServerless returns true if the configuration selects the FaaS handler
func (c *Config) IsServerless() bool {
	return c.Mode == ModeLambda
}

// AdaptForMode modifies configuration for the selected deployment mode
func AdaptForMode(config *Config) *Config {
	if !config.IsServerless() {
		return config
	}

	// The deployment package is read-only; keep the database in the scratch area.
	if config.Database.Path == DefaultDatabasePath {
		config.Database.Path = filepath.Join(lambdaDatabaseDir, filepath.Base(DefaultDatabasePath))
	}

	// One connection per container; invocations never run in parallel threads.
	config.Database.MaxOpenConns = 1
	config.Database.MaxIdleConns = 1

	return config
}
