// Package logging configures the process-wide logrus logger.
package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/config"
)

// Init applies the configured level and format to the standard logger
// and returns it. Unknown levels fall back to info.
func Init(cfg config.LoggerConfig) *logrus.Logger {
	logger := logrus.StandardLogger()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
