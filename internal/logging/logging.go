// Package logging builds the process-wide logrus logger from configuration.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a configured logrus logger. Development keeps the
// human-readable text formatter; every other environment emits JSON for log
// aggregation.
func NewLogger(level, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if environment == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
