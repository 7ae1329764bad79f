package helpers

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured Logrus logger
func NewLogger(appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	switch env {
	case "development":
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "test":
		logger.SetOutput(io.Discard)
	default:
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env}).Info("logger initialized")
	return logger
}

// RequestLogger tags entries with the request id set by RequestIDMiddleware.
func RequestLogger(logger *logrus.Logger, c *gin.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if rid := c.GetString("request_id"); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	return entry
}

// LogError Convenience methods to keep a unified logging interface
func LogError(entry *logrus.Entry, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	entry.WithFields(fields).Error(msg)
}
