package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3loader/service/internal/credentials"
	"github.com/s3loader/service/internal/storage"
	"github.com/s3loader/service/internal/storage/storagetest"
)

// fakeEndpoint is an S3-compatible HTTP server that answers every request
// through reply and counts requests per method.
type fakeEndpoint struct {
	mu       sync.Mutex
	requests map[string]int
	reply    func(r *http.Request) (status int, code string)
}

func newFakeEndpoint(t *testing.T, reply func(r *http.Request) (int, string)) (*fakeEndpoint, *httptest.Server) {
	t.Helper()
	f := &fakeEndpoint{requests: make(map[string]int), reply: reply}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.Method]++
	f.mu.Unlock()
	_, _ = io.Copy(io.Discard, r.Body)

	status, code := f.reply(r)
	w.Header().Set("x-amz-request-id", "req-1")
	if code == "" {
		w.Header().Set("ETag", `"900150983cd24fb0d6963f7d28e17f72"`)
		w.Header().Set("Last-Modified", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<Error><Code>%s</Code><Message>simulated %s</Message><RequestId>req-1</RequestId></Error>`, code, code)
}

func (f *fakeEndpoint) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method]
}

func always(status int, code string) func(*http.Request) (int, string) {
	return func(*http.Request) (int, string) { return status, code }
}

// isolateAWSConfig keeps the developer's shared AWS config out of the SDK.
func isolateAWSConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

var drivers = []string{storage.DriverS3, storage.DriverMinio}

func newHTTPBackend(t *testing.T, driver, endpoint string) storage.Backend {
	t.Helper()
	isolateAWSConfig(t)
	newBackend, err := storage.NewBackendFunc(storage.Settings{
		Driver:    driver,
		Endpoint:  endpoint,
		PathStyle: true,
	})
	require.NoError(t, err)
	b, err := newBackend(context.Background(), credentials.Credentials{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return b
}

func TestBackendPutSendsOneRequestPerAttempt(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		puts       int
	}{
		{name: "single attempt", maxRetries: -1, puts: 1},
		{name: "default retries", maxRetries: 0, puts: 4},
	}
	for _, driver := range drivers {
		for _, tt := range tests {
			t.Run(driver+"/"+tt.name, func(t *testing.T) {
				f, srv := newFakeEndpoint(t, always(http.StatusServiceUnavailable, "ServiceUnavailable"))
				sleeper := &storagetest.NoSleep{}
				c := storage.NewClient(newHTTPBackend(t, driver, srv.URL), storage.Options{
					MaxRetries: tt.maxRetries,
					Sleep:      sleeper.Sleep,
				})

				out := c.Put(context.Background(), storage.PutInput{
					Bucket:    "bucket",
					Key:       "uploads/a.txt",
					Payload:   bytes.NewReader([]byte("abc")),
					Size:      3,
					RequestID: "req",
				})

				assert.False(t, out.Success)
				assert.Equal(t, tt.puts-1, out.Retries)
				assert.Equal(t, tt.puts, f.count(http.MethodPut))
				assert.Len(t, sleeper.Delays, tt.puts-1)
			})
		}
	}
}

func TestBackendPutSucceedsAfterTransientFailure(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			var mu sync.Mutex
			failures := 1
			f, srv := newFakeEndpoint(t, func(*http.Request) (int, string) {
				mu.Lock()
				defer mu.Unlock()
				if failures > 0 {
					failures--
					return http.StatusServiceUnavailable, "SlowDown"
				}
				return http.StatusOK, ""
			})
			c := storage.NewClient(newHTTPBackend(t, driver, srv.URL), storage.Options{Sleep: (&storagetest.NoSleep{}).Sleep})

			out := c.Put(context.Background(), storage.PutInput{
				Bucket: "bucket", Key: "k", Payload: bytes.NewReader([]byte("abc")), Size: 3, RequestID: "req",
			})

			assert.True(t, out.Success, out.Error)
			assert.Equal(t, 1, out.Retries)
			assert.Equal(t, 2, f.count(http.MethodPut))
		})
	}
}

func TestBackendErrorTranslation(t *testing.T) {
	tests := []struct {
		status int
		code   string
		kind   storage.Kind
	}{
		{http.StatusServiceUnavailable, "SlowDown", storage.KindTransient},
		{http.StatusInternalServerError, "InternalError", storage.KindTransient},
		{http.StatusForbidden, "InvalidAccessKeyId", storage.KindAuth},
		{http.StatusForbidden, "SignatureDoesNotMatch", storage.KindAuth},
		{http.StatusNotFound, "NoSuchKey", storage.KindNotFound},
		{http.StatusBadRequest, "InvalidArgument", storage.KindPermanent},
	}
	for _, driver := range drivers {
		for _, tt := range tests {
			t.Run(driver+"/"+tt.code, func(t *testing.T) {
				f, srv := newFakeEndpoint(t, always(tt.status, tt.code))
				b := newHTTPBackend(t, driver, srv.URL)

				_, err := b.GetObject(context.Background(), "bucket", "k")
				require.Error(t, err)

				var se *storage.Error
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.code, se.Code)
				assert.Equal(t, tt.kind, se.Kind)
				assert.Equal(t, 1, f.count(http.MethodGet))
			})
		}
	}
}

func TestBackendDeleteOfMissingKeyStopsAtHead(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			f, srv := newFakeEndpoint(t, func(r *http.Request) (int, string) {
				if r.Method == http.MethodHead {
					return http.StatusNotFound, "NoSuchKey"
				}
				return http.StatusNoContent, ""
			})
			c := storage.NewClient(newHTTPBackend(t, driver, srv.URL), storage.Options{})

			deleted, err := c.Delete(context.Background(), "bucket", "missing.txt")

			assert.False(t, deleted)
			assert.True(t, storage.IsNotFound(err), "got %v", err)
			assert.Equal(t, 1, f.count(http.MethodHead))
			assert.Zero(t, f.count(http.MethodDelete))
		})
	}
}

func TestBackendDeleteExistingKey(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			f, srv := newFakeEndpoint(t, func(r *http.Request) (int, string) {
				if r.Method == http.MethodDelete {
					return http.StatusNoContent, ""
				}
				return http.StatusOK, ""
			})
			c := storage.NewClient(newHTTPBackend(t, driver, srv.URL), storage.Options{})

			deleted, err := c.Delete(context.Background(), "bucket", "a.txt")

			require.NoError(t, err)
			assert.True(t, deleted)
			assert.Equal(t, 1, f.count(http.MethodDelete))
		})
	}
}
