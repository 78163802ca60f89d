// Package logging builds the process logger shared by both run modes.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"queue-manager-api/internal/config"
)

// New creates a logrus logger from the log configuration. Unknown levels fall
// back to info.
func New(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
