package router

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// HTTPError is an error carrying the status code to respond with
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// WriteError responds with err as JSON. Parameter errors are 400, an
// HTTPError keeps its status and anything else is 500.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var httpErr *HTTPError
	var paramErr *ParamError
	switch {
	case stderrors.As(err, &httpErr):
		status, message = httpErr.StatusCode, httpErr.Message
	case stderrors.As(err, &paramErr):
		status, message = http.StatusBadRequest, paramErr.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
