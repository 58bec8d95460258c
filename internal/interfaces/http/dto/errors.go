package dto

import (
	"net/http"
	"strings"
)

// Envelope error codes, format ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
)

// Authentication and permission error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
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
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeQuantityExceeded  = "ERR_QUANTITY_EXCEEDED"
)

// ErrorCodeHTTPStatus maps envelope error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeQuantityExceeded:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an envelope error code,
// 500 when the code is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to envelope codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"LOCK_NOT_OBTAINED":    ErrCodeConflict,

	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"ACCOUNT_INACTIVE":    ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"ORG_SUSPENDED":       ErrCodeForbidden,

	"INVALID_STATE":      ErrCodeInvalidState,
	"INSUFFICIENT_STOCK": ErrCodeInsufficientStock,
	"QUANTITY_EXCEEDED":  ErrCodeQuantityExceeded,
	"BRANCH_INACTIVE":    ErrCodeInvalidState,

	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"RENDER_FAILED":    ErrCodeInternal,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its envelope code.
// Unmapped INVALID_* codes are input validation failures; anything else
// unmapped is a business rule violation.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainErrorCodeMapping[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return ErrCodeBusinessRule
}
