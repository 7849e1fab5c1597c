package middleware

import (
	"context"
	"net/http"

	"github.com/s3loader/service/internal/credentials"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// RequestIDKey is the context key for the request correlation id.
const RequestIDKey contextKey = "requestID"

// CredentialsKey is the context key for the caller's credential override.
const CredentialsKey contextKey = "credentialOverride"

// Credentials injects the caller-supplied storage credential headers into
// the request context. It never rejects a request: resolution against the
// process defaults happens in the handlers.
func Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), CredentialsKey, credentials.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCredentials returns the override stored in ctx. Requests that did not
// pass through Credentials get an empty override.
func GetCredentials(ctx context.Context) credentials.Override {
	o, _ := ctx.Value(CredentialsKey).(credentials.Override)
	return o
}
