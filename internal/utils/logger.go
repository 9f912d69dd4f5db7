package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new logger instance
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	if level != "" {
		switch level {
		case "DEBUG":
			logger.SetLevel(logrus.DebugLevel)
		case "INFO":
			logger.SetLevel(logrus.InfoLevel)
		case "WARN":
			logger.SetLevel(logrus.WarnLevel)
		case "ERROR":
			logger.SetLevel(logrus.ErrorLevel)
		}
	}

	return logger
}

// NewLoggerWithFile creates a logger that writes to both stdout and the
// given log file. Falls back to stdout only when the file cannot be opened.
func NewLoggerWithFile(level, file string) *logrus.Logger {
	logger := NewLogger(level)

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Warnf("Failed to open log file %s: %v", file, err)
		} else {
			logger.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	return logger
}
