package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new structured logger instance
func NewLogger(level, environment string) *logrus.Logger {
	logger := logrus.New()

	// JSON for production, text for development
	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.999Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logger.SetOutput(os.Stdout)

	return logger
}

// WithRequestID adds request ID to logger fields
func WithRequestID(logger logrus.FieldLogger, requestID string) *logrus.Entry {
	return logger.WithField("request_id", requestID)
}

// WithUserID adds user ID to logger fields
func WithUserID(logger logrus.FieldLogger, userID string) *logrus.Entry {
	return logger.WithField("user_id", userID)
}

// WithVideoID adds video ID to logger fields
func WithVideoID(logger logrus.FieldLogger, videoID string) *logrus.Entry {
	return logger.WithField("video_id", videoID)
}
