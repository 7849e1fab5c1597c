// Package upload validates incoming files and writes them to object storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/s3loader/service/internal/config"
	"github.com/s3loader/service/internal/credentials"
	"github.com/s3loader/service/internal/logging"
	"github.com/s3loader/service/internal/storage"
)

// defaultPrefix holds uploads that arrive without an upload path.
const defaultPrefix = "uploads"

// State is a step of the per-request upload lifecycle.
type State string

const (
	StateReceived            State = "received"
	StateCredentialsResolved State = "credentials_resolved"
	StateValidated           State = "validated"
	StateKeyBuilt            State = "key_built"
	StateStored              State = "stored"
	StatePresigned           State = "presigned"
	StateResponded           State = "responded"
	StateRejected            State = "rejected"
	StateFailed              State = "failed"
)

// Request is one upload as received from the caller. Payload must support
// random access so that retries can re-read it from the start.
type Request struct {
	Payload     io.ReaderAt
	Size        int64
	Filename    string
	ContentType string // caller-declared, advisory
	Bucket      string // optional override of the default bucket
	UploadPath  string // optional key prefix
}

// Result is the response payload of a successful upload.
type Result struct {
	Success      bool   `json:"success"`
	FileKey      string `json:"file_key"`
	RequestID    string `json:"request_id"`
	PresignedURL string `json:"presigned_url"`
}

// Service orchestrates credential resolution, validation, the storage write
// and the presigned link. It keeps no state between requests.
type Service struct {
	cfg    *config.Config
	policy Policy
	stores *storage.Factory
}

// NewService creates a new upload Service.
func NewService(cfg *config.Config, stores *storage.Factory) *Service {
	return &Service{
		cfg:    cfg,
		policy: NewPolicy(cfg.MaxFileSize, cfg.AllowedMimeTypes),
		stores: stores,
	}
}

// Upload runs one request through the lifecycle. Input problems return a
// *RejectedError before any backend is contacted; a write that fails after
// retries returns a *FailedError.
func (s *Service) Upload(ctx context.Context, req Request, override credentials.Override, requestID string) (*Result, error) {
	t := &tracker{requestID: requestID, state: StateReceived}

	creds, err := s.resolveCredentials(override)
	if err != nil {
		return nil, t.reject(err)
	}
	bucket, err := credentials.ResolveBucket(req.Bucket, s.cfg.S3BucketName)
	if err != nil {
		return nil, t.reject(err)
	}
	t.advance(StateCredentialsResolved)

	if req.Filename == "" {
		return nil, t.reject(reject("File must have a name"))
	}
	if err := s.policy.Validate(req.Size, req.ContentType); err != nil {
		return nil, t.reject(err)
	}
	t.advance(StateValidated)

	logging.UploadStarted(requestID, req.Filename, req.Size)

	key := BuildKey(req.UploadPath, req.Filename)
	t.advance(StateKeyBuilt)

	client, err := s.stores.Client(ctx, creds)
	if err != nil {
		t.advance(StateFailed)
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	outcome := client.Put(ctx, storage.PutInput{
		Bucket:      bucket,
		Key:         key,
		Payload:     req.Payload,
		Size:        req.Size,
		ContentType: req.ContentType,
		RequestID:   requestID,
	})
	if !outcome.Success {
		t.advance(StateFailed)
		return nil, &FailedError{Outcome: outcome}
	}
	t.advance(StateStored)

	url := client.Presign(ctx, bucket, key, s.cfg.PresignExpiry)
	t.advance(StatePresigned)

	t.advance(StateResponded)
	return &Result{
		Success:      true,
		FileKey:      key,
		RequestID:    requestID,
		PresignedURL: url,
	}, nil
}

// RejectOversized builds the rejection for a request whose body exceeded the
// size limit before it could be read. Credential and bucket problems take
// precedence over the size, as in Upload. size is the declared body length,
// or -1 when unknown.
func (s *Service) RejectOversized(override credentials.Override, bucket string, size int64, requestID string) error {
	t := &tracker{requestID: requestID, state: StateReceived}

	if _, err := s.resolveCredentials(override); err != nil {
		return t.reject(err)
	}
	if _, err := credentials.ResolveBucket(bucket, s.cfg.S3BucketName); err != nil {
		return t.reject(err)
	}
	t.advance(StateCredentialsResolved)

	return t.reject(s.policy.oversized(size))
}

func (s *Service) resolveCredentials(override credentials.Override) (credentials.Credentials, error) {
	return credentials.Resolve(override, credentials.Credentials{
		AccessKey: s.cfg.AWSAccessKeyID,
		SecretKey: s.cfg.AWSSecretAccessKey,
		Region:    s.cfg.AWSRegion,
	})
}

// BuildKey joins the upload path and filename into a storage key. Trailing
// slashes on the path are dropped; an empty path selects "uploads/". Neither
// part is sanitized, so nested prefixes pass through unchanged.
func BuildKey(uploadPath, filename string) string {
	if uploadPath == "" {
		return defaultPrefix + "/" + filename
	}
	return strings.TrimRight(uploadPath, "/") + "/" + filename
}

// tracker follows one request through its states for debug logging.
type tracker struct {
	requestID string
	state     State
}

func (t *tracker) advance(next State) {
	log.WithFields(log.Fields{
		"request_id": t.requestID,
		"from":       t.state,
		"to":         next,
	}).Debug("upload state")
	t.state = next
}

// reject moves to StateRejected and normalizes err into a *RejectedError.
func (t *tracker) reject(err error) error {
	t.advance(StateRejected)
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej
	}
	return &RejectedError{Reason: err.Error(), Err: err}
}
