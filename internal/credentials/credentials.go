// Package credentials resolves the storage credentials and bucket that a
// single request operates with.
package credentials

import (
	"errors"
	"net/http"
)

// Header names carrying a caller-supplied credential override.
const (
	AccessKeyHeader = "X-AWS-Access-Key"
	SecretKeyHeader = "X-AWS-Secret-Key"
)

// ErrMissingCredentials is returned when neither the request nor the process
// defaults yield both an access key and a secret key.
var ErrMissingCredentials = errors.New("AWS credentials not provided")

// ErrMissingBucket is returned when no bucket name can be resolved.
var ErrMissingBucket = errors.New("Bucket name not provided and S3_BUCKET_NAME not configured")

// Credentials is the effective key pair and region for one request.
type Credentials struct {
	AccessKey string
	SecretKey string
	Region    string
}

// Override carries the per-request values supplied by the caller. Empty
// fields mean "use the default".
type Override struct {
	AccessKey string
	SecretKey string
}

// FromRequest extracts the credential override headers from r.
func FromRequest(r *http.Request) Override {
	return Override{
		AccessKey: r.Header.Get(AccessKeyHeader),
		SecretKey: r.Header.Get(SecretKeyHeader),
	}
}

// Empty reports whether the override supplies neither key.
func (o Override) Empty() bool {
	return o.AccessKey == "" && o.SecretKey == ""
}

// Resolve merges override onto defaults field by field. The region always
// comes from defaults.
func Resolve(override Override, defaults Credentials) (Credentials, error) {
	c := Credentials{
		AccessKey: pick(override.AccessKey, defaults.AccessKey),
		SecretKey: pick(override.SecretKey, defaults.SecretKey),
		Region:    defaults.Region,
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return c, nil
}

// ResolveBucket returns the requested bucket, or the default when none was given.
func ResolveBucket(requested, fallback string) (string, error) {
	bucket := pick(requested, fallback)
	if bucket == "" {
		return "", ErrMissingBucket
	}
	return bucket, nil
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
