package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response normalized into one error shape
type APIError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether the error is a 404
func (e *APIError) IsNotFound() bool { return e.Status == http.StatusNotFound }

// IsUnauthorized reports whether the error is a 401
func (e *APIError) IsUnauthorized() bool { return e.Status == http.StatusUnauthorized }

// IsConflict reports whether the error is a 409
func (e *APIError) IsConflict() bool { return e.Status == http.StatusConflict }

// parseAPIError normalizes the error body. Three shapes are tolerated:
// {"error": "..."}, {"error": {"code": ..., "message": ..., "details": ...}}
// and {"message": "..."}.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Message = fallbackMessage(status, body)
		return apiErr
	}

	if len(envelope.Error) > 0 {
		var plain string
		if err := json.Unmarshal(envelope.Error, &plain); err == nil {
			apiErr.Message = plain
			return apiErr
		}
		var structured struct {
			Code    string      `json:"code"`
			Message string      `json:"message"`
			Details interface{} `json:"details"`
		}
		if err := json.Unmarshal(envelope.Error, &structured); err == nil {
			apiErr.Code = structured.Code
			apiErr.Message = structured.Message
			apiErr.Details = structured.Details
			return apiErr
		}
	}

	if envelope.Message != "" {
		apiErr.Message = envelope.Message
		return apiErr
	}

	apiErr.Message = fallbackMessage(status, body)
	return apiErr
}

func fallbackMessage(status int, body []byte) string {
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}
