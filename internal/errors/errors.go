package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeDegenerateCovariance = "DEGENERATE_COVARIANCE"
	CodeParseError           = "PARSE_ERROR"
	CodeRenderError          = "RENDER_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error constructors

// InvalidInput covers empty sample sets, dimension mismatches, non-positive
// sigma and sample counts too small for a valid chi-square bucketing.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// DegenerateCovariance signals a rank-deficient correlation matrix. This is
// an unrecoverable condition: silently reducing the dimension would
// invalidate the degree-of-freedom assumptions of every downstream test.
func DegenerateCovariance(message string) *AppError {
	return New(CodeDegenerateCovariance, message)
}

func ParseError(message string) *AppError {
	return New(CodeParseError, message)
}

func RenderError(message string) *AppError {
	return New(CodeRenderError, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
