// Package errors provides standardized error handling for the assistant core.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Confirmable action engine errors.
	ErrCodeActionNotFound      ErrorCode = "ACTION_NOT_FOUND"
	ErrCodeActionForbidden     ErrorCode = "ACTION_FORBIDDEN"
	ErrCodeActionExpired       ErrorCode = "ACTION_EXPIRED"
	ErrCodeActionParamsInvalid ErrorCode = "ACTION_PARAMS_INVALID"
	ErrCodeExecutorFailed      ErrorCode = "EXECUTOR_FAILED"
	ErrCodeUnknownActionType   ErrorCode = "UNKNOWN_ACTION_TYPE"

	// Storage and backend errors.
	ErrCodeStoreUnavailable     ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"

	// Best-effort side channels.
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from an error chain, or "" if the chain
// carries no StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Is and As re-export the stdlib helpers so callers of this package do not
// need a second errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

// ==========================
// 2. Error Constructors
// ==========================

// NewActionNotFoundError reports a confirm/cancel against an unknown intent id.
func NewActionNotFoundError(intentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionNotFound,
		Message:   "Action intent not found",
		Details:   fmt.Sprintf("intentId: %s", intentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionForbiddenError reports a confirm/cancel by a user other than the
// intent owner. The requesting user id is deliberately not echoed back.
func NewActionForbiddenError(intentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionForbidden,
		Message:   "Action intent belongs to a different user",
		Details:   fmt.Sprintf("intentId: %s", intentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionExpiredError covers the whole consumed family: past TTL, already
// confirmed or executed, cancelled. Confirmation is never retryable once the
// pending state is gone.
func NewActionExpiredError(intentID string, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionExpired,
		Message:   "Action intent is no longer pending",
		Details:   fmt.Sprintf("intentId: %s, status: %s", intentID, status),
		Retryable: false,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewActionParamsInvalidError reports schema validation failure before staging.
func NewActionParamsInvalidError(actionType string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionParamsInvalid,
		Message:   "Action params failed validation",
		Details:   fmt.Sprintf("actionType: %s, %s", actionType, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutorFailedError wraps a business-logic failure from an executor.
// Not retryable through the engine: re-dispatch risk depends on executor
// idempotency, which the engine cannot assume.
func NewExecutorFailedError(actionType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutorFailed,
		Message:   "Action executor reported failure",
		Details:   fmt.Sprintf("actionType: %s, error: %s", actionType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownActionTypeError reports dispatch against an unwired action type.
func NewUnknownActionTypeError(actionType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownActionType,
		Message:   "No executor registered for action type",
		Details:   fmt.Sprintf("actionType: %s", actionType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable store infrastructure error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Action intent store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable database query error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search backend error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Facility search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a non-fatal notification error.
// Callers log it and move on; notification delivery never fails an action.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
