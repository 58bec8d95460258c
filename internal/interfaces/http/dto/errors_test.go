package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(ErrCodeNotFound))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeConcurrencyConflict))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(ErrCodeInvalidState))
	assert.Equal(t, http.StatusUnauthorized, GetHTTPStatus(ErrCodeTokenRevoked))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_NEVER_HEARD_OF"))
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		domain   string
		envelope string
		status   int
	}{
		{"NOT_FOUND", ErrCodeNotFound, http.StatusNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists, http.StatusConflict},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"INVALID_CREDENTIALS", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"ORG_SUSPENDED", ErrCodeForbidden, http.StatusForbidden},
		{"INVALID_STATE", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		// unmapped INVALID_* codes are validation failures
		{"INVALID_SLUG", ErrCodeValidation, http.StatusBadRequest},
		// everything else unmapped is a business rule violation
		{"CYCLE_DETECTED", ErrCodeBusinessRule, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			code := NormalizeErrorCode(tt.domain)
			assert.Equal(t, tt.envelope, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse([]string{"a", "b"}, 41, 2, 20)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.Limit)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListRequestToFilter(t *testing.T) {
	filter := ListRequest{}.ToFilter()
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)
	assert.Equal(t, "created_at", filter.OrderBy)

	filter = ListRequest{Page: 3, Limit: 50, OrderBy: "name", OrderDir: "asc", Search: "widget"}.ToFilter()
	assert.Equal(t, 3, filter.Page)
	assert.Equal(t, 50, filter.PageSize)
	assert.Equal(t, "name", filter.OrderBy)
	assert.Equal(t, "asc", filter.OrderDir)
	assert.Equal(t, "widget", filter.Search)
}
