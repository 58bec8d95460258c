package dto

import "github.com/stockflows/backend/internal/domain/shared"

// Response is the success envelope: the payload under "data", pagination
// under "meta" when the endpoint is a list.
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo describes what went wrong
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NewResponse wraps a payload in the success envelope
func NewResponse(data interface{}) Response {
	return Response{Data: data}
}

// NewPaginatedResponse wraps a page of results with its pagination meta
func NewPaginatedResponse(data interface{}, total int64, page, limit int) Response {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit > 0 {
			totalPages++
		}
	}
	return Response{
		Data: data,
		Meta: &Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse builds the failure envelope
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorInfo{Code: code, Message: message}}
}

// NewErrorResponseWithDetails builds the failure envelope with field details
func NewErrorResponseWithDetails(code, message string, details interface{}) ErrorResponse {
	return ErrorResponse{Error: ErrorInfo{Code: code, Message: message, Details: details}}
}

// ListRequest holds the common list/pagination query parameters
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// ToFilter converts the query parameters to a domain filter, filling defaults
func (r ListRequest) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.Limit > 0 {
		filter.PageSize = r.Limit
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		filter.OrderDir = r.OrderDir
	}
	filter.Search = r.Search
	return filter
}

// IDRequest binds an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
