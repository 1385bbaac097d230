package utils

import (
	"fmt"

	"github.com/dl-alexandre/nxraw/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired = 10
	// Publish errors (20-29)
	ExitDeletionFailed      = 20
	ExitDeletionCheckFailed = 21
	ExitDeletionTimeout     = 22
	ExitUploadFailed        = 23
	ExitScanFailed          = 24
	// Interrupted (30-39)
	ExitCancelled = 31
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidConfig   = 41
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthRequired        = "AUTH_REQUIRED"
	ErrCodeDeletionFailed      = "DELETION_FAILED"
	ErrCodeDeletionCheckFailed = "DELETION_CHECK_FAILED"
	ErrCodeDeletionTimeout     = "DELETION_TIMEOUT"
	ErrCodeUploadFailed        = "UPLOAD_FAILED"
	ErrCodeScanFailed          = "SCAN_FAILED"
	ErrCodeCancelled           = "CANCELLED"
	ErrCodeInvalidArgument     = "INVALID_ARGUMENT"
	ErrCodeInvalidConfig       = "INVALID_CONFIGURATION"
	ErrCodeKeyringUnavailable  = "KEYRING_UNAVAILABLE"
	ErrCodeUnknown             = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:        ExitAuthRequired,
		ErrCodeKeyringUnavailable:  ExitAuthRequired,
		ErrCodeDeletionFailed:      ExitDeletionFailed,
		ErrCodeDeletionCheckFailed: ExitDeletionCheckFailed,
		ErrCodeDeletionTimeout:     ExitDeletionTimeout,
		ErrCodeUploadFailed:        ExitUploadFailed,
		ErrCodeScanFailed:          ExitScanFailed,
		ErrCodeCancelled:           ExitCancelled,
		ErrCodeInvalidArgument:     ExitInvalidArgument,
		ErrCodeInvalidConfig:       ExitInvalidConfig,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// ExitCode returns the process exit status for this error
func (e *AppError) ExitCode() int {
	return GetExitCode(e.CLIError.Code)
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}
