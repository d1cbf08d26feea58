// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yourusername/race-kelly-sim/internal/config"
)

// NewLogger creates a new configured logger instance
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(newFormatter("text"))

	return logger
}

// NewFromConfig builds a logger from the application config. When a log file
// path is set, output goes to both stdout and a rotated file.
func NewFromConfig(cfg config.AppConfig) (*logrus.Logger, error) {
	logger := NewLogger(cfg.LogLevel)
	logger.SetFormatter(newFormatter(cfg.LogFormat))

	if cfg.LogFile.Path == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.LogFile.Path,
		MaxSize:    cfg.LogFile.MaxSizeMB,
		MaxBackups: cfg.LogFile.MaxBackups,
		MaxAge:     cfg.LogFile.MaxAgeDays,
		Compress:   cfg.LogFile.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, fileWriter))

	return logger, nil
}

func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
	}
}
