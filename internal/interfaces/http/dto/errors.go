package dto

import "net/http"

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 422: they come from domain rules.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

// domainErrorCodeMapping maps domain error codes to transport codes.
// Domain codes absent from this table pass through unchanged and map
// to 422 via GetHTTPStatus.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"USER_NOT_FOUND":          ErrCodeNotFound,
	"CUSTOMER_NOT_FOUND":      ErrCodeNotFound,
	"CATALOG_ITEM_NOT_FOUND":  ErrCodeNotFound,
	"ITEM_NOT_FOUND":          ErrCodeNotFound,
	"INVITATION_INVALID":      ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"USERNAME_TAKEN":          ErrCodeAlreadyExists,
	"EMAIL_TAKEN":             ErrCodeAlreadyExists,
	"SKU_TAKEN":               ErrCodeAlreadyExists,
	"CUSTOMER_EXISTS":         ErrCodeAlreadyExists,
	"INVITATION_PENDING":      ErrCodeConflict,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"INVALID_CREDENTIALS":     ErrCodeUnauthorized,
	"TOKEN_EXPIRED":           ErrCodeTokenExpired,
	"TOKEN_INVALID":           ErrCodeTokenInvalid,
	"TOKEN_ERROR":             ErrCodeTokenInvalid,
	"FORBIDDEN":               ErrCodeForbidden,
	"ACCOUNT_LOCKED":          ErrCodeForbidden,
	"ACCOUNT_INACTIVE":        ErrCodeForbidden,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its transport
// equivalent. Codes without a mapping are returned as-is.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainErrorCodeMapping[code]; ok {
		return mapped
	}
	return code
}
