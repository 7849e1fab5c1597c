package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3loader/service/internal/middleware"
)

func TestErrorCarriesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, "File not found: k")
	}))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "File not found: k", body.Detail)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), body.RequestID)
}

func TestErrorWithoutRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"detail":"internal server error"}`, rec.Body.String())
}
