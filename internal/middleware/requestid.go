package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the response header carrying the correlation id.
const RequestIDHeader = "X-Request-ID"

// NewRequestID returns a fresh random (v4) UUID. It keeps no state and is safe
// for concurrent use.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestID assigns every request a new correlation id, stores it in the
// request context and echoes it in the response headers. Client-supplied ids
// are ignored so that ids stay unique.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := NewRequestID()
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the correlation id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
