package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/zsiec/ringvideo/internal/capture"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/locator"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeLengthPrecondition ErrorType = "LENGTH_PRECONDITION"
	ErrorTypeIO                 ErrorType = "IO_ERROR"
	ErrorTypeCache              ErrorType = "CACHE_ERROR"
	ErrorTypeCanceled           ErrorType = "CANCELED"
	ErrorTypeInternal           ErrorType = "INTERNAL_ERROR"
)

// Process exit codes
const (
	ExitOK                 = 0
	ExitInternal           = 1
	ExitValidation         = 2
	ExitNotFound           = 3
	ExitIO                 = 4
	ExitLengthPrecondition = 5
	ExitCache              = 6
	ExitCanceled           = 130
)

// Error codes attached by Classify.
const (
	CodeMarkerNotFound  = "MARKER_NOT_FOUND"
	CodeStrideMismatch  = "STRIDE_MISMATCH"
	CodeCaptureTooLarge = "CAPTURE_TOO_LARGE"
	CodeIndexStale      = "INDEX_STALE"
)

// AppError represents an application error with additional context.
type AppError struct {
	Type     ErrorType              `json:"type"`
	Message  string                 `json:"message"`
	Code     string                 `json:"code,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
	ExitCode int                    `json:"-"`
	Err      error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCode adds an error code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// New creates a new AppError.
func New(errType ErrorType, message string, exitCode int) *AppError {
	return &AppError{
		Type:     errType,
		Message:  message,
		ExitCode: exitCode,
	}
}

// Wrap wraps an existing error.
func Wrap(err error, errType ErrorType, message string, exitCode int) *AppError {
	return &AppError{
		Type:     errType,
		Message:  message,
		ExitCode: exitCode,
		Err:      err,
	}
}

// Common error constructors.

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message, ExitValidation)
}

// NewNotFoundError reports that no frame marker was found.
func NewNotFoundError(err error) *AppError {
	return Wrap(err, ErrorTypeNotFound, "no frame found", ExitNotFound)
}

// NewLengthPreconditionError reports a frame buffer of the wrong size.
func NewLengthPreconditionError(err error) *AppError {
	return Wrap(err, ErrorTypeLengthPrecondition, "frame buffer does not match stride", ExitLengthPrecondition)
}

// WrapIOError wraps a failure reading the capture or writing output.
func WrapIOError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeIO, message, ExitIO)
}

// WrapCacheError wraps a frame index cache failure.
func WrapCacheError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeCache, message, ExitCache)
}

// WrapInternalError wraps an unexpected error.
func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message, ExitInternal)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := GetAppError(err)
	return ok
}

// GetAppError extracts AppError from an error chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Classify converts err into an AppError, mapping the sentinel errors of the
// decoding packages to their error types. nil stays nil.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := GetAppError(err); ok {
		return appErr
	}

	switch {
	case stderrors.Is(err, locator.ErrNotFound):
		return NewNotFoundError(err).WithCode(CodeMarkerNotFound)
	case stderrors.Is(err, decoder.ErrLength):
		return NewLengthPreconditionError(err).WithCode(CodeStrideMismatch)
	case stderrors.Is(err, capture.ErrTooLarge):
		return Wrap(err, ErrorTypeValidation, "capture rejected", ExitValidation).WithCode(CodeCaptureTooLarge)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrorTypeCanceled, "decode interrupted", ExitCanceled)
	case stderrors.Is(err, index.ErrStale):
		return WrapCacheError(err, "frame index unusable").WithCode(CodeIndexStale)
	case stderrors.Is(err, index.ErrMiss):
		return WrapCacheError(err, "frame index unusable")
	case stderrors.Is(err, fs.ErrNotExist), stderrors.Is(err, fs.ErrPermission):
		return WrapIOError(err, "capture cannot be opened")
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return WrapIOError(err, "capture read failed")
	default:
		return WrapInternalError(err, "an unexpected error occurred")
	}
}
