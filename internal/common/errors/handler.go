// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"
)

// HTTPStatus maps an internal error code to the HTTP status the transport
// layer responds with. Unknown codes default to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeActionNotFound:
		return http.StatusNotFound
	case ErrCodeActionForbidden:
		return http.StatusForbidden
	case ErrCodeActionExpired:
		return http.StatusGone
	case ErrCodeActionParamsInvalid:
		return http.StatusBadRequest
	case ErrCodeUnknownActionType:
		return http.StatusBadRequest
	case ErrCodeExecutorFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeStoreUnavailable, ErrCodeQueryExecutionFailed, ErrCodeSearchQueryFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Normalize ensures callers always see a StandardError.
func Normalize(err error) *StandardError {
	if se, ok := err.(*StandardError); ok {
		return se
	}
	var se *StandardError
	if As(err, &se) {
		return se
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
