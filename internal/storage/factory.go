package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/s3loader/service/internal/credentials"
)

// Supported backend drivers.
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// Settings selects and configures the backend driver. Credentials are not
// part of Settings; they arrive per request.
type Settings struct {
	Driver    string
	Endpoint  string // host[:port] or URL; empty selects the provider default
	UseSSL    bool
	PathStyle bool
}

// endpointURL renders Endpoint as a URL for the AWS SDK.
func (s Settings) endpointURL() string {
	if strings.Contains(s.Endpoint, "://") {
		return s.Endpoint
	}
	scheme := "http"
	if s.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + s.Endpoint
}

// hostEndpoint renders Endpoint as the bare host[:port] minio-go expects.
func (s Settings) hostEndpoint() string {
	if !strings.Contains(s.Endpoint, "://") {
		return s.Endpoint
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return s.Endpoint
	}
	return u.Host
}

// BackendFunc builds a Backend bound to one set of credentials.
type BackendFunc func(ctx context.Context, creds credentials.Credentials) (Backend, error)

// NewBackendFunc returns the constructor for the configured driver.
func NewBackendFunc(s Settings) (BackendFunc, error) {
	switch s.Driver {
	case "", DriverS3:
		return func(ctx context.Context, creds credentials.Credentials) (Backend, error) {
			return NewS3Backend(ctx, creds, s)
		}, nil
	case DriverMinio:
		return func(_ context.Context, creds credentials.Credentials) (Backend, error) {
			return NewMinioBackend(creds, s)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", s.Driver)
	}
}

// Factory hands out a fresh Client per credential set. Clients are never
// shared across differing credentials.
type Factory struct {
	newBackend BackendFunc
	opts       Options
}

// NewFactory creates a Factory.
func NewFactory(newBackend BackendFunc, opts Options) *Factory {
	return &Factory{newBackend: newBackend, opts: opts}
}

// Client returns a Client bound to creds.
func (f *Factory) Client(ctx context.Context, creds credentials.Credentials) (*Client, error) {
	backend, err := f.newBackend(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("create storage backend: %w", err)
	}
	return NewClient(backend, f.opts), nil
}
