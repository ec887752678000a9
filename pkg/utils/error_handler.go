package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorHandler logs err under message and returns the wrapped error, so
// callers can log-and-wrap in one call. A nil err is a no-op.
func ErrorHandler(err error, message string) error {
	if err == nil {
		return nil
	}
	Logger.WithFields(logrus.Fields{
		"error": err.Error(),
	}).Error(message)
	return fmt.Errorf("%s: %w", message, err)
}
