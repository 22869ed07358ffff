package errors

import (
	"github.com/sirupsen/logrus"
)

// ErrorHandler reports run-terminating errors once and maps them to a
// process exit code.
type ErrorHandler struct {
	logger *logrus.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle logs err at a level matching its type and returns the exit code.
func (h *ErrorHandler) Handle(err error) int {
	appErr := Classify(err)
	if appErr == nil {
		return ExitOK
	}

	logEntry := h.logger.WithFields(logrus.Fields{
		"error_type": appErr.Type,
		"error_code": appErr.Code,
		"exit_code":  appErr.ExitCode,
	})
	if len(appErr.Details) > 0 {
		logEntry = logEntry.WithFields(appErr.Details)
	}

	switch appErr.Type {
	case ErrorTypeInternal, ErrorTypeIO, ErrorTypeLengthPrecondition:
		logEntry.Error(appErr.Error())
	default:
		logEntry.Warn(appErr.Error())
	}

	return appErr.ExitCode
}

// HandlePanic converts a recovered panic into an internal error exit code.
func (h *ErrorHandler) HandlePanic(recovered interface{}) int {
	h.logger.WithField("panic", recovered).Error("Panic recovered during decode")
	return ExitInternal
}
