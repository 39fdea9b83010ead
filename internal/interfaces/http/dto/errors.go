package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep their own
// codes and are mapped through ErrorCodeHTTPStatus.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeBodyTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes missing
// from the table fall back to the prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	"CART_EMPTY":       http.StatusBadRequest,
	"ORDER_EMPTY":      http.StatusBadRequest,
	"TOO_MANY_TAGS":    http.StatusBadRequest,
	"UPLOAD_NOT_FOUND": http.StatusBadRequest,

	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"NO_RECIPIENT":       http.StatusUnprocessableEntity,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,

	ErrCodeForbidden:   http.StatusForbidden,
	"ACCOUNT_LOCKED":   http.StatusForbidden,
	"ACCOUNT_INACTIVE": http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	"PRODUCT_IN_USE":          http.StatusConflict,
	"COLLECTION_NOT_EMPTY":    http.StatusConflict,
	"CUSTOMER_HAS_ORDERS":     http.StatusConflict,
	"ALREADY_EXISTS":          http.StatusConflict,
	"REFERENCE_CONFLICT":      http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"OPTIMISTIC_LOCK_FAILED":  http.StatusConflict,
	"VERSION_CONFLICT":        http.StatusConflict,
	"INVALID_STATE":           http.StatusConflict,
	"IMAGE_LIMIT_EXCEEDED":    http.StatusConflict,

	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	"UPLOAD_URL_FAILED":    http.StatusBadGateway,
	"STORAGE_CHECK_FAILED": http.StatusBadGateway,
	"PDF_UNAVAILABLE":      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unlisted
// INVALID_* codes are input errors and unlisted *_NOT_FOUND codes are
// lookups; everything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
