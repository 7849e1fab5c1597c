package storage_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3loader/service/internal/storage"
	"github.com/s3loader/service/internal/storage/storagetest"
)

func newClient(b *storagetest.Backend, s *storagetest.NoSleep) *storage.Client {
	return storage.NewClient(b, storage.Options{MaxRetries: 3, BaseDelay: time.Second, Sleep: s.Sleep})
}

func putInput(payload []byte) storage.PutInput {
	return storage.PutInput{
		Bucket:      "bucket",
		Key:         "uploads/a.txt",
		Payload:     bytes.NewReader(payload),
		Size:        int64(len(payload)),
		ContentType: "text/plain",
		RequestID:   "req-1",
	}
}

func TestPutSucceedsFirstTry(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	s := &storagetest.NoSleep{}

	out := newClient(b, s).Put(context.Background(), putInput([]byte("hello")))

	assert.True(t, out.Success)
	assert.Equal(t, "uploads/a.txt", out.Key)
	assert.Equal(t, 0, out.Retries)
	assert.Empty(t, s.Delays)

	obj, ok := b.Object("bucket", "uploads/a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", string(obj.Data))
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, map[string]string{"request-id": "req-1"}, obj.Metadata)
}

func TestPutRetriesTransientErrors(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.PutErrors = []error{
		storagetest.APIError("put object", "ThrottlingException"),
		storagetest.APIError("put object", "ServiceUnavailable"),
	}
	s := &storagetest.NoSleep{}

	out := newClient(b, s).Put(context.Background(), putInput([]byte("payload")))

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Retries)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, s.Delays)
	assert.Equal(t, 3, b.Calls("PutObject"))

	// every attempt re-reads the payload from the start
	obj, _ := b.Object("bucket", "uploads/a.txt")
	assert.Equal(t, "payload", string(obj.Data))
}

func TestPutPermanentErrorIsNotRetried(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.PutErrors = []error{storagetest.APIError("put object", "AccessDenied")}
	s := &storagetest.NoSleep{}

	out := newClient(b, s).Put(context.Background(), putInput([]byte("x")))

	assert.False(t, out.Success)
	assert.Equal(t, 0, out.Retries)
	assert.Contains(t, out.Error, "AccessDenied")
	assert.Empty(t, s.Delays)
	assert.Equal(t, 1, b.Calls("PutObject"))
}

func TestPutGivesUpAfterMaxRetries(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	for i := 0; i < 5; i++ {
		b.PutErrors = append(b.PutErrors, storagetest.APIError("put object", "InternalError"))
	}
	s := &storagetest.NoSleep{}

	out := newClient(b, s).Put(context.Background(), putInput([]byte("x")))

	assert.False(t, out.Success)
	assert.Equal(t, 3, out.Retries)
	assert.Contains(t, out.Error, "InternalError")
	assert.Equal(t, 4, b.Calls("PutObject"))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, s.Delays)
}

func TestPutStopsWhenContextCancelledDuringBackoff(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.PutErrors = []error{storagetest.APIError("put object", "SlowDown")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newClient(b, &storagetest.NoSleep{}).Put(ctx, putInput([]byte("x")))

	assert.False(t, out.Success)
	assert.Equal(t, 0, out.Retries)
	assert.Contains(t, out.Error, context.Canceled.Error())
}

func TestPutUnclassifiedErrorIsPermanent(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.PutErrors = []error{errors.New("connection reset by peer")}

	out := newClient(b, &storagetest.NoSleep{}).Put(context.Background(), putInput([]byte("x")))

	assert.False(t, out.Success)
	assert.Equal(t, 0, out.Retries)
	assert.Equal(t, 1, b.Calls("PutObject"))
}

func TestListGroupsFoldersAndFiles(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.Seed("bucket", "docs/", nil)
	b.Seed("bucket", "docs/a.txt", []byte("aaa"))
	b.Seed("bucket", "docs/b.txt", []byte("b"))
	b.Seed("bucket", "docs/img/1.png", []byte("1"))
	b.Seed("bucket", "docs/img/2.png", []byte("2"))
	b.Seed("bucket", "docs/zip/x.zip", []byte("x"))
	b.Seed("bucket", "other.txt", []byte("o"))

	listing := newClient(b, &storagetest.NoSleep{}).List(context.Background(), "bucket", "docs/", "/")

	assert.Equal(t, "docs/", listing.CurrentPrefix)
	assert.Equal(t, []storage.Folder{
		{Name: "img", Prefix: "docs/img/"},
		{Name: "zip", Prefix: "docs/zip/"},
	}, listing.Folders)
	require.Len(t, listing.Files, 2)
	assert.Equal(t, "a.txt", listing.Files[0].Name)
	assert.Equal(t, "docs/a.txt", listing.Files[0].Key)
	assert.Equal(t, int64(3), listing.Files[0].Size)
	assert.Equal(t, "b.txt", listing.Files[1].Name)
}

func TestListRoot(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.Seed("bucket", "uploads/a.txt", []byte("a"))
	b.Seed("bucket", "readme.md", []byte("r"))

	listing := newClient(b, &storagetest.NoSleep{}).List(context.Background(), "bucket", "", "/")

	assert.Equal(t, []storage.Folder{{Name: "uploads", Prefix: "uploads/"}}, listing.Folders)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "readme.md", listing.Files[0].Name)
}

func TestListFailureReturnsEmptyListing(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.ListErr = storagetest.APIError("list objects", "AccessDenied")

	listing := newClient(b, &storagetest.NoSleep{}).List(context.Background(), "bucket", "some/prefix/", "/")

	assert.Equal(t, storage.ObjectListing{
		Folders:       []storage.Folder{},
		Files:         []storage.File{},
		CurrentPrefix: "some/prefix/",
	}, listing)
}

func TestListBucketsClassifiesAuthFailures(t *testing.T) {
	b := storagetest.NewBackend("alpha", "beta")
	c := newClient(b, &storagetest.NoSleep{})

	buckets, err := c.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "alpha", buckets[0].Name)

	b.ListBucketsErr = storagetest.APIError("list buckets", "InvalidAccessKeyId")
	_, err = c.ListBuckets(context.Background())
	assert.True(t, storage.IsAuth(err))

	b.ListBucketsErr = errors.New("dial tcp: i/o timeout")
	_, err = c.ListBuckets(context.Background())
	require.Error(t, err)
	assert.False(t, storage.IsAuth(err))
}

func TestPresignIsBestEffort(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	c := newClient(b, &storagetest.NoSleep{})

	url := c.Presign(context.Background(), "bucket", "k", time.Hour)
	assert.Contains(t, url, "X-Amz-Expires=3600")

	b.PresignErr = errors.New("signing failed")
	assert.Equal(t, "", c.Presign(context.Background(), "bucket", "k", time.Hour))
}

func TestGetPropagatesErrors(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.Seed("bucket", "k", []byte("data"))
	c := newClient(b, &storagetest.NoSleep{})

	data, err := c.Get(context.Background(), "bucket", "k")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	_, err = c.Get(context.Background(), "bucket", "missing")
	assert.True(t, storage.IsNotFound(err))
}

func TestHeadMetadataFallsBackToBinary(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	c := newClient(b, &storagetest.NoSleep{})

	md := c.HeadMetadata(context.Background(), "bucket", "missing")
	assert.Equal(t, storage.Metadata{ContentType: storage.DefaultContentType}, md)
}

func TestDeleteReportsMissingKeys(t *testing.T) {
	b := storagetest.NewBackend("bucket")
	b.Seed("bucket", "k", []byte("data"))
	c := newClient(b, &storagetest.NoSleep{})

	ok, err := c.Delete(context.Background(), "bucket", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	_, exists := b.Object("bucket", "k")
	assert.False(t, exists)

	ok, err = c.Delete(context.Background(), "bucket", "k")
	assert.False(t, ok)
	assert.True(t, storage.IsNotFound(err))
}
