package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zsiec/ringvideo/internal/capture"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/locator"
)

func TestAppError(t *testing.T) {
	t.Run("New creates error correctly", func(t *testing.T) {
		err := New(ErrorTypeValidation, "Invalid input", ExitValidation)

		assert.Equal(t, ErrorTypeValidation, err.Type)
		assert.Equal(t, "Invalid input", err.Message)
		assert.Equal(t, ExitValidation, err.ExitCode)
		assert.Equal(t, "VALIDATION_ERROR: Invalid input", err.Error())
	})

	t.Run("Wrap wraps error correctly", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := Wrap(originalErr, ErrorTypeInternal, "Something went wrong", ExitInternal)

		assert.Equal(t, ErrorTypeInternal, err.Type)
		assert.Equal(t, ExitInternal, err.ExitCode)
		assert.Equal(t, originalErr, err.Unwrap())
		assert.Contains(t, err.Error(), "original error")
	})

	t.Run("WithDetails adds details", func(t *testing.T) {
		err := NewValidationError("bad mode")
		details := map[string]interface{}{"field": "decode.mode"}
		_ = err.WithDetails(details)

		assert.Equal(t, details, err.Details)
	})

	t.Run("WithCode adds code", func(t *testing.T) {
		err := NewValidationError("bad mode")
		_ = err.WithCode("ERR_001")

		assert.Equal(t, "ERR_001", err.Code)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantExit int
	}{
		{"not found", fmt.Errorf("seek: %w", locator.ErrNotFound), ErrorTypeNotFound, ExitNotFound},
		{"length", fmt.Errorf("decode: %w", decoder.ErrLength), ErrorTypeLengthPrecondition, ExitLengthPrecondition},
		{"too large", fmt.Errorf("open: %w", capture.ErrTooLarge), ErrorTypeValidation, ExitValidation},
		{"canceled", context.Canceled, ErrorTypeCanceled, ExitCanceled},
		{"missing file", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, ErrorTypeIO, ExitIO},
		{"stale index", fmt.Errorf("frame 3: %w", index.ErrStale), ErrorTypeCache, ExitCache},
		{"short read", fmt.Errorf("read frame: %w", io.ErrUnexpectedEOF), ErrorTypeIO, ExitIO},
		{"other", errors.New("boom"), ErrorTypeInternal, ExitInternal},
		{"already classified", fmt.Errorf("outer: %w", WrapCacheError(errors.New("down"), "redis")), ErrorTypeCache, ExitCache},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := Classify(tt.err)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantExit, appErr.ExitCode)
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestClassify_Codes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("seek: %w", locator.ErrNotFound), CodeMarkerNotFound},
		{fmt.Errorf("decode: %w", decoder.ErrLength), CodeStrideMismatch},
		{fmt.Errorf("open: %w", capture.ErrTooLarge), CodeCaptureTooLarge},
		{fmt.Errorf("frame 3: %w", index.ErrStale), CodeIndexStale},
		{errors.New("boom"), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, Classify(tt.err).Code, tt.err.Error())
	}
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(NewValidationError("x")))
	assert.True(t, IsAppError(fmt.Errorf("wrapped: %w", NewValidationError("x"))))
	assert.False(t, IsAppError(errors.New("plain")))

	appErr, ok := GetAppError(NewNotFoundError(locator.ErrNotFound))
	assert.True(t, ok)
	assert.ErrorIs(t, appErr, locator.ErrNotFound)
}
