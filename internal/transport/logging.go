package transport

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// LogConnect logs an established channel.
func LogConnect(logger *logrus.Logger, kind, endpoint string) {
	logger.WithFields(logrus.Fields{
		"transport": kind,
		"endpoint":  endpoint,
	}).Info("Channel connected")
}

// LogDisconnect logs a closed channel and the error that closed it, if any.
func LogDisconnect(logger *logrus.Logger, kind, endpoint string, err error) {
	fields := logrus.Fields{
		"transport": kind,
		"endpoint":  endpoint,
	}
	if err != nil && !errors.Is(err, ErrClosed) {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("Channel disconnected")
}
