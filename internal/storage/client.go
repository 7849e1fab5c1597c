package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/s3loader/service/internal/logging"
)

// Default retry policy for Put.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Options tunes a Client. Zero values select the defaults.
type Options struct {
	MaxRetries int // negative disables retries
	BaseDelay  time.Duration
	// Sleep waits between attempts. It returns early with ctx.Err() when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
	// Observer receives operation telemetry; nil disables it.
	Observer Observer
}

// Client wraps a Backend with the retry policy and error semantics of each
// operation. It holds no per-request state.
type Client struct {
	backend    Backend
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	observer   Observer
}

// NewClient creates a Client over backend.
func NewClient(backend Backend, opts Options) *Client {
	c := &Client{
		backend:    backend,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		sleep:      opts.Sleep,
		observer:   opts.Observer,
	}
	switch {
	case c.maxRetries == 0:
		c.maxRetries = DefaultMaxRetries
	case c.maxRetries < 0:
		c.maxRetries = 0
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	return c
}

// PutInput describes one object write.
type PutInput struct {
	Bucket      string
	Key         string
	Payload     io.ReaderAt
	Size        int64
	ContentType string
	RequestID   string
}

// Put writes the payload, retrying transient failures with exponential
// backoff (BaseDelay * 2^attempt). Failures are returned in the outcome, not
// as an error. Exactly one success or failure event is logged.
func (c *Client) Put(ctx context.Context, in PutInput) UploadOutcome {
	metadata := map[string]string{"request-id": in.RequestID}
	start := time.Now()

	for attempt := 0; ; attempt++ {
		body := io.NewSectionReader(in.Payload, 0, in.Size)
		err := c.backend.PutObject(ctx, in.Bucket, in.Key, body, in.Size, in.ContentType, metadata)
		if err == nil {
			logging.UploadSucceeded(in.RequestID, in.Key, attempt)
			c.observer.RecordUpload(time.Since(start), in.Size, attempt, nil)
			return UploadOutcome{Success: true, Key: in.Key, Retries: attempt}
		}

		if KindOf(err) != KindTransient || attempt >= c.maxRetries {
			return c.putFailed(in, start, err, attempt)
		}

		wait := c.baseDelay * time.Duration(1<<attempt)
		log.WithFields(log.Fields{
			"request_id": in.RequestID,
			"key":        in.Key,
			"attempt":    attempt + 1,
		}).Warnf("transient error, retrying in %s: %v", wait, err)

		if err := c.sleep(ctx, wait); err != nil {
			return c.putFailed(in, start, fmt.Errorf("put object: %w", err), attempt)
		}
	}
}

func (c *Client) putFailed(in PutInput, start time.Time, err error, retries int) UploadOutcome {
	logging.UploadFailed(in.RequestID, in.Key, err.Error(), retries)
	c.observer.RecordUpload(time.Since(start), in.Size, retries, err)
	return UploadOutcome{Key: in.Key, Retries: retries, Error: err.Error()}
}

// List returns the folders and files one level below prefix. Listing is best
// effort: a backend failure yields an empty listing for the same prefix.
func (c *Client) List(ctx context.Context, bucket, prefix, delimiter string) ObjectListing {
	listing := ObjectListing{
		Folders:       []Folder{},
		Files:         []File{},
		CurrentPrefix: prefix,
	}

	start := time.Now()
	raw, err := c.backend.ListObjects(ctx, bucket, prefix, delimiter)
	c.observer.RecordOperation(OpList, time.Since(start), err)
	if err != nil {
		log.WithFields(log.Fields{"bucket": bucket, "prefix": prefix}).Errorf("list objects: %v", err)
		return listing
	}

	sep := delimiter
	if sep == "" {
		sep = "/"
	}
	for _, p := range raw.CommonPrefixes {
		listing.Folders = append(listing.Folders, Folder{
			Name:   lastSegment(strings.TrimRight(p, sep), sep),
			Prefix: p,
		})
	}
	for _, obj := range raw.Objects {
		if obj.Key == prefix {
			continue
		}
		listing.Files = append(listing.Files, File{
			Name:         lastSegment(obj.Key, sep),
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return listing
}

// ListBuckets enumerates buckets. Rejected credentials surface as an error
// for which IsAuth is true.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	start := time.Now()
	buckets, err := c.backend.ListBuckets(ctx)
	c.observer.RecordOperation(OpListBuckets, time.Since(start), err)
	if err != nil {
		log.Errorf("list buckets: %v", err)
		return nil, err
	}
	if buckets == nil {
		buckets = []Bucket{}
	}
	return buckets, nil
}

// Presign returns a download URL valid for expiry, or "" when signing fails.
func (c *Client) Presign(ctx context.Context, bucket, key string, expiry time.Duration) string {
	start := time.Now()
	url, err := c.backend.PresignGetObject(ctx, bucket, key, expiry)
	c.observer.RecordOperation(OpPresign, time.Since(start), err)
	if err != nil {
		log.WithFields(log.Fields{"bucket": bucket, "key": key}).Errorf("presign url: %v", err)
		return ""
	}
	return url
}

// Get downloads the object payload.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	start := time.Now()
	data, err := c.backend.GetObject(ctx, bucket, key)
	c.observer.RecordOperation(OpGet, time.Since(start), err)
	if err != nil {
		log.WithFields(log.Fields{"bucket": bucket, "key": key}).Errorf("download: %v", err)
		return nil, err
	}
	return data, nil
}

// HeadMetadata returns object metadata, falling back to a generic binary
// content type when the lookup fails.
func (c *Client) HeadMetadata(ctx context.Context, bucket, key string) Metadata {
	start := time.Now()
	md, err := c.backend.HeadObject(ctx, bucket, key)
	c.observer.RecordOperation(OpHead, time.Since(start), err)
	if err != nil {
		log.WithFields(log.Fields{"bucket": bucket, "key": key}).Errorf("head object: %v", err)
		return Metadata{ContentType: DefaultContentType}
	}
	if md.ContentType == "" {
		md.ContentType = DefaultContentType
	}
	return md
}

// Delete removes bucket/key. A key that does not exist is reported as a
// not-found error, since S3 acknowledges deletes of absent keys.
func (c *Client) Delete(ctx context.Context, bucket, key string) (bool, error) {
	fields := log.Fields{"bucket": bucket, "key": key}
	start := time.Now()

	if _, err := c.backend.HeadObject(ctx, bucket, key); err != nil {
		c.observer.RecordOperation(OpDelete, time.Since(start), err)
		log.WithFields(fields).Errorf("delete: %v", err)
		return false, err
	}
	err := c.backend.DeleteObject(ctx, bucket, key)
	c.observer.RecordOperation(OpDelete, time.Since(start), err)
	if err != nil {
		log.WithFields(fields).Errorf("delete: %v", err)
		return false, err
	}
	log.WithFields(fields).Info("object deleted")
	return true, nil
}

func lastSegment(key, sep string) string {
	if i := strings.LastIndex(key, sep); i >= 0 {
		return key[i+len(sep):]
	}
	return key
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
