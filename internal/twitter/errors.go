package twitter

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-200 response from the Twitter API.
type APIError struct {
	// Code is the first Twitter error code in the response body,
	// or 0 when the body carried none.
	Code int

	// StatusCode is the HTTP status code.
	StatusCode int

	// Reason is the HTTP reason phrase, for example "Too Many Requests".
	Reason string

	// Message is the first Twitter error message in the response body.
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("twitter api: %d %s (code %d: %s)", e.StatusCode, e.Reason, e.Code, e.Message)
	}
	return fmt.Sprintf("twitter api: %d %s", e.StatusCode, e.Reason)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// RateLimited reports whether the request was rejected by rate limiting.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// errorBody is the error envelope returned by the v1.1 API.
type errorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// newAPIError builds an APIError from a status code and response body.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Reason:     http.StatusText(statusCode),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Errors) > 0 {
		apiErr.Code = eb.Errors[0].Code
		apiErr.Message = eb.Errors[0].Message
	}
	return apiErr
}
