// Package storagetest provides an in-memory storage.Backend for tests. It
// records every call and lets tests script backend failures.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/s3loader/service/internal/storage"
)

// Object is a stored payload.
type Object struct {
	Data         []byte
	ContentType  string
	Metadata     map[string]string
	LastModified time.Time
}

// Backend is an in-memory storage.Backend keyed by bucket and key.
type Backend struct {
	mu      sync.Mutex
	objects map[string]map[string]Object
	created map[string]time.Time
	calls   map[string]int

	// PutErrors are returned by successive PutObject calls; once exhausted,
	// writes succeed.
	PutErrors      []error
	ListErr        error
	ListBucketsErr error
	PresignErr     error
	DeleteErr      error
}

// NewBackend returns an empty Backend with the given buckets created.
func NewBackend(buckets ...string) *Backend {
	b := &Backend{
		objects: make(map[string]map[string]Object),
		created: make(map[string]time.Time),
		calls:   make(map[string]int),
	}
	for _, name := range buckets {
		b.objects[name] = make(map[string]Object)
		b.created[name] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return b
}

// APIError builds the error a real backend would return for code.
func APIError(op, code string) error {
	return storage.NewError(op, code, fmt.Sprintf("simulated %s", code), nil)
}

// Calls reports how many times method was invoked.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// TotalCalls reports the number of backend calls of any kind.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// Seed stores an object directly, bypassing call accounting.
func (b *Backend) Seed(bucket, key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects[bucket] == nil {
		b.objects[bucket] = make(map[string]Object)
	}
	b.objects[bucket][key] = Object{Data: data, LastModified: time.Now().UTC()}
}

// Object returns a stored object.
func (b *Backend) Object(bucket, key string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[bucket][key]
	return obj, ok
}

func (b *Backend) record(method string) {
	b.calls[method]++
}

func (b *Backend) lookup(op, bucket, key string) (Object, error) {
	objs, ok := b.objects[bucket]
	if !ok {
		return Object{}, APIError(op, "NoSuchBucket")
	}
	obj, ok := objs[key]
	if !ok {
		return Object{}, APIError(op, "NoSuchKey")
	}
	return obj, nil
}

func (b *Backend) PutObject(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string, metadata map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("PutObject")

	if len(b.PutErrors) > 0 {
		err := b.PutErrors[0]
		b.PutErrors = b.PutErrors[1:]
		if err != nil {
			return err
		}
	}
	objs, ok := b.objects[bucket]
	if !ok {
		return APIError("put object", "NoSuchBucket")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	objs[key] = Object{Data: data, ContentType: contentType, Metadata: metadata, LastModified: time.Now().UTC()}
	return nil
}

func (b *Backend) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("GetObject")

	obj, err := b.lookup("get object", bucket, key)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), obj.Data...), nil
}

func (b *Backend) HeadObject(_ context.Context, bucket, key string) (storage.Metadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("HeadObject")

	obj, err := b.lookup("head object", bucket, key)
	if err != nil {
		return storage.Metadata{}, err
	}
	return storage.Metadata{
		ContentType:   obj.ContentType,
		ContentLength: int64(len(obj.Data)),
		LastModified:  obj.LastModified,
		ETag:          fmt.Sprintf("%q", fmt.Sprintf("%x", len(obj.Data))),
	}, nil
}

func (b *Backend) DeleteObject(_ context.Context, bucket, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("DeleteObject")

	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	if _, ok := b.objects[bucket]; !ok {
		return APIError("delete object", "NoSuchBucket")
	}
	delete(b.objects[bucket], key)
	return nil
}

// ListObjects emulates S3 delimiter grouping in lexicographic key order.
func (b *Backend) ListObjects(_ context.Context, bucket, prefix, delimiter string) (storage.RawListing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("ListObjects")

	if b.ListErr != nil {
		return storage.RawListing{}, b.ListErr
	}
	objs, ok := b.objects[bucket]
	if !ok {
		return storage.RawListing{}, APIError("list objects", "NoSuchBucket")
	}

	keys := make([]string, 0, len(objs))
	for k := range objs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var raw storage.RawListing
	seen := make(map[string]bool)
	for _, k := range keys {
		rest := k[len(prefix):]
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+len(delimiter)]
				if !seen[cp] {
					seen[cp] = true
					raw.CommonPrefixes = append(raw.CommonPrefixes, cp)
				}
				continue
			}
		}
		obj := objs[k]
		raw.Objects = append(raw.Objects, storage.ObjectInfo{
			Key:          k,
			Size:         int64(len(obj.Data)),
			LastModified: obj.LastModified,
		})
	}
	return raw, nil
}

func (b *Backend) ListBuckets(_ context.Context) ([]storage.Bucket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("ListBuckets")

	if b.ListBucketsErr != nil {
		return nil, b.ListBucketsErr
	}
	names := make([]string, 0, len(b.created))
	for name := range b.created {
		names = append(names, name)
	}
	sort.Strings(names)

	buckets := make([]storage.Bucket, 0, len(names))
	for _, name := range names {
		buckets = append(buckets, storage.Bucket{Name: name, CreationDate: b.created[name]})
	}
	return buckets, nil
}

func (b *Backend) PresignGetObject(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("PresignGetObject")

	if b.PresignErr != nil {
		return "", b.PresignErr
	}
	return fmt.Sprintf("https://%s.s3.local/%s?X-Amz-Expires=%d", bucket, key, int(expiry.Seconds())), nil
}

// NoSleep is a storage.Options.Sleep that records requested delays instead of waiting.
type NoSleep struct {
	mu     sync.Mutex
	Delays []time.Duration
}

// Sleep records d and returns immediately.
func (s *NoSleep) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delays = append(s.Delays, d)
	return ctx.Err()
}
