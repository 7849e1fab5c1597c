// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/s3loader/service/internal/middleware"
)

// ErrorBody is the JSON shape of every non-2xx response. The reason is
// carried in "detail", which is what the web client reads.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data as the body.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Error writes an error response with the given status and message. The
// request id is the one middleware.RequestID already set on w.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{
		Success:   false,
		Detail:    message,
		RequestID: w.Header().Get(middleware.RequestIDHeader),
	})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 response.
func InternalError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "internal server error"
	}
	Error(w, http.StatusInternalServerError, message)
}
