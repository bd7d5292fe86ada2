package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode identifies a class of failure. Every code maps to one
// user-visible message class so the calling UI can decide between
// "retry", "change selection" and "contact support".
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"

	// Buyer input is missing or malformed; the user corrects and retries.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// The seller is over their configured sold-ticket limit.
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"

	// Requested numbers changed state concurrently. Carries the list of
	// offending numbers in Details["numbers"].
	ErrCodeAvailabilityConflict ErrorCode = "AVAILABILITY_CONFLICT"

	// A store or object-storage call failed. Carries the triggering
	// operation in Details["operation"]; never silently retried here.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"

	// A seller or participant id could not be resolved. Fatal for the
	// current request; the engine never proceeds with a guessed id.
	ErrCodeResolution ErrorCode = "RESOLUTION_ERROR"
)

// AppError is the typed application error carried across layers.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether the user can fix the request themselves
// (correct input, shrink the selection, pick other numbers).
func (e *AppError) IsRecoverable() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeQuotaExceeded, ErrCodeAvailabilityConflict:
		return true
	}
	return false
}

// WithDetail attaches structured data to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID tags the error with the originating request.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an underlying error with an application code.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an underlying error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError reports a bad buyer-input field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewQuotaExceededError reports a seller over their sold-ticket limit.
func NewQuotaExceededError(sellerID string, soldCount, requested, maxAllowed int) *AppError {
	return New(ErrCodeQuotaExceeded,
		fmt.Sprintf("seller quota exceeded: %d sold + %d requested > %d allowed", soldCount, requested, maxAllowed)).
		WithDetail("seller_id", sellerID).
		WithDetail("sold_count", soldCount).
		WithDetail("requested", requested).
		WithDetail("max_allowed", maxAllowed)
}

// NewAvailabilityConflictError reports numbers that changed state under
// the caller's feet. The offending numbers travel with the error.
func NewAvailabilityConflictError(numbers []string) *AppError {
	return New(ErrCodeAvailabilityConflict,
		fmt.Sprintf("%d requested number(s) are no longer available", len(numbers))).
		WithDetail("numbers", numbers)
}

// NewUpstreamError reports a failed store or storage call, naming the
// operation that triggered it.
func NewUpstreamError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeUpstream, fmt.Sprintf("upstream operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewResolutionError reports an id that could not be resolved.
func NewResolutionError(kind, ref string) *AppError {
	return New(ErrCodeResolution, fmt.Sprintf("%s could not be resolved: %s", kind, ref)).
		WithDetail("kind", kind).
		WithDetail("ref", ref)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// AsAppError unwraps err to an AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ConflictNumbers extracts the offending numbers from an availability
// conflict, so callers can branch on "some numbers became unavailable"
// without string matching.
func ConflictNumbers(err error) ([]string, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeAvailabilityConflict {
		return nil, false
	}
	numbers, ok := appErr.Details["numbers"].([]string)
	return numbers, ok
}

// IsCode reports whether err carries the given application code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
