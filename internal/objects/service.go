// Package objects exposes bucket enumeration, folder-style listing, download
// and batch deletion of stored objects.
package objects

import (
	"context"
	"strings"

	"github.com/s3loader/service/internal/config"
	"github.com/s3loader/service/internal/credentials"
	"github.com/s3loader/service/internal/storage"
)

// Delimiter groups keys into folders.
const Delimiter = "/"

// Download is an object payload ready to be served.
type Download struct {
	Data        []byte
	ContentType string
	Filename    string
}

// DeleteFailure reports one key that could not be deleted.
type DeleteFailure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// DeleteResult is the outcome of a batch delete. Success is true whenever the
// batch ran; callers inspect Failed for per-key errors.
type DeleteResult struct {
	Success bool            `json:"success"`
	Deleted []string        `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}

// Service resolves credentials per call and delegates to a storage.Client
// bound to them.
type Service struct {
	cfg    *config.Config
	stores *storage.Factory
}

// NewService creates a new objects Service.
func NewService(cfg *config.Config, stores *storage.Factory) *Service {
	return &Service{cfg: cfg, stores: stores}
}

func (s *Service) client(ctx context.Context, override credentials.Override) (*storage.Client, error) {
	creds, err := credentials.Resolve(override, credentials.Credentials{
		AccessKey: s.cfg.AWSAccessKeyID,
		SecretKey: s.cfg.AWSSecretAccessKey,
		Region:    s.cfg.AWSRegion,
	})
	if err != nil {
		return nil, err
	}
	return s.stores.Client(ctx, creds)
}

// ListBuckets returns every bucket visible to the effective credentials.
func (s *Service) ListBuckets(ctx context.Context, override credentials.Override) ([]storage.Bucket, error) {
	c, err := s.client(ctx, override)
	if err != nil {
		return nil, err
	}
	return c.ListBuckets(ctx)
}

// ListObjects returns the folders and files directly under prefix.
func (s *Service) ListObjects(ctx context.Context, override credentials.Override, bucket, prefix string) (storage.ObjectListing, error) {
	c, err := s.client(ctx, override)
	if err != nil {
		return storage.ObjectListing{}, err
	}
	return c.List(ctx, bucket, prefix, Delimiter), nil
}

// Download fetches an object and its content type.
func (s *Service) Download(ctx context.Context, override credentials.Override, bucket, key string) (*Download, error) {
	c, err := s.client(ctx, override)
	if err != nil {
		return nil, err
	}
	data, err := c.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	md := c.HeadMetadata(ctx, bucket, key)
	return &Download{
		Data:        data,
		ContentType: md.ContentType,
		Filename:    key[strings.LastIndex(key, "/")+1:],
	}, nil
}

// Delete removes each key independently; one failure does not stop the batch.
func (s *Service) Delete(ctx context.Context, override credentials.Override, bucket string, keys []string) (*DeleteResult, error) {
	c, err := s.client(ctx, override)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Success: true, Deleted: []string{}, Failed: []DeleteFailure{}}
	for _, key := range keys {
		if _, err := c.Delete(ctx, bucket, key); err != nil {
			res.Failed = append(res.Failed, DeleteFailure{Key: key, Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, key)
	}
	return res, nil
}
