package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeInvalidNumber      = "ERR_INVALID_NUMBER"
	ErrCodeInvalidQuantity    = "ERR_INVALID_QUANTITY"
	ErrCodeInvalidPrice       = "ERR_INVALID_PRICE"
	ErrCodeInvalidRegion      = "ERR_INVALID_REGION"
	ErrCodeInvalidStatus      = "ERR_INVALID_STATUS"
	ErrCodeInvalidContentType = "ERR_INVALID_CONTENT_TYPE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists    = "ERR_ALREADY_EXISTS"
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeEmptyCart         = "ERR_EMPTY_CART"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeImageNotUploaded  = "ERR_IMAGE_NOT_UPLOADED"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeInvalidID    = "ERR_INVALID_ID"
)

// Transport error codes
const (
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"
	ErrCodeUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeInvalidNumber:      http.StatusBadRequest,
	ErrCodeInvalidQuantity:    http.StatusBadRequest,
	ErrCodeInvalidPrice:       http.StatusBadRequest,
	ErrCodeInvalidRegion:      http.StatusBadRequest,
	ErrCodeInvalidStatus:      http.StatusBadRequest,
	ErrCodeInvalidContentType: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeDuplicateRequest: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeImageNotUploaded:  http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidID:    http.StatusBadRequest,

	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes.
// Codes sharing a prefix family are folded onto one API code.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"PRODUCT_NOT_FOUND":    ErrCodeNotFound,
	"UPLOAD_NOT_FOUND":     ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"INVALID_CREDENTIALS":  ErrCodeInvalidCredentials,
	"EMPTY_CART":           ErrCodeEmptyCart,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"IMAGE_NOT_UPLOADED":   ErrCodeImageNotUploaded,
	"INVALID_QUANTITY":     ErrCodeInvalidQuantity,
	"INVALID_PRICE":        ErrCodeInvalidPrice,
	"INVALID_STOCK":        ErrCodeInvalidInput,
	"INVALID_REGION":       ErrCodeInvalidRegion,
	"INVALID_STATUS":       ErrCodeInvalidStatus,
	"INVALID_CONTENT_TYPE": ErrCodeInvalidContentType,
	"INVALID_NAME":         ErrCodeInvalidInput,
	"INVALID_PRODUCT":      ErrCodeInvalidInput,
	"INVALID_ORDER_NUMBER": ErrCodeInvalidInput,
	"INVALID_USERNAME":     ErrCodeInvalidInput,
	"INVALID_PASSWORD":     ErrCodeInvalidInput,
	"UPLOAD_URL_FAILED":    ErrCodeUnavailable,
	"STORAGE_CHECK_FAILED": ErrCodeUnavailable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
