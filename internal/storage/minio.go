package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/s3loader/service/internal/credentials"
)

// defaultMinioEndpoint is used when the minio driver runs without STORAGE_ENDPOINT.
const defaultMinioEndpoint = "s3.amazonaws.com"

// MinioBackend implements Backend using minio-go, which speaks to any
// S3-compatible provider (MinIO, ArvanCloud, AWS S3).
type MinioBackend struct {
	client *minio.Client
}

// NewMinioBackend creates a MinIO client bound to creds. Unlike the S3
// backend it never touches bucket configuration; buckets belong to the caller.
func NewMinioBackend(creds credentials.Credentials, settings Settings) (*MinioBackend, error) {
	endpoint := settings.hostEndpoint()
	if endpoint == "" {
		endpoint = defaultMinioEndpoint
	}

	// Client.Put owns retries; one minio-go attempt per backend call.
	opts := &minio.Options{
		Creds:      miniocreds.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure:     settings.UseSSL,
		Region:     creds.Region,
		MaxRetries: 1,
	}
	if settings.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioBackend{client: client}, nil
}

func (b *MinioBackend) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata map[string]string) error {
	_, err := b.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return translateMinio("put object", err)
	}
	return nil
}

func (b *MinioBackend) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinio("get object", err)
	}
	defer obj.Close()

	// minio-go defers the request until the first read, so errors such as
	// NoSuchKey surface here.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translateMinio("get object", err)
	}
	return data, nil
}

func (b *MinioBackend) HeadObject(ctx context.Context, bucket, key string) (Metadata, error) {
	info, err := b.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return Metadata{}, translateMinio("head object", err)
	}
	return Metadata{
		ContentType:   info.ContentType,
		ContentLength: info.Size,
		LastModified:  info.LastModified,
		ETag:          info.ETag,
	}, nil
}

func (b *MinioBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return translateMinio("delete object", err)
	}
	return nil
}

// ListObjects only groups on "/": minio-go's non-recursive listing has a fixed
// delimiter. An empty delimiter lists recursively.
func (b *MinioBackend) ListObjects(ctx context.Context, bucket, prefix, delimiter string) (RawListing, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var raw RawListing
	for obj := range b.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: delimiter == "",
	}) {
		if obj.Err != nil {
			return RawListing{}, translateMinio("list objects", obj.Err)
		}
		// Common prefixes come back as bare keys with no modification time.
		if delimiter != "" && strings.HasSuffix(obj.Key, "/") && obj.LastModified.IsZero() {
			raw.CommonPrefixes = append(raw.CommonPrefixes, obj.Key)
			continue
		}
		raw.Objects = append(raw.Objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return raw, nil
}

func (b *MinioBackend) ListBuckets(ctx context.Context) ([]Bucket, error) {
	infos, err := b.client.ListBuckets(ctx)
	if err != nil {
		return nil, translateMinio("list buckets", err)
	}
	buckets := make([]Bucket, 0, len(infos))
	for _, info := range infos {
		buckets = append(buckets, Bucket{Name: info.Name, CreationDate: info.CreationDate})
	}
	return buckets, nil
}

func (b *MinioBackend) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", translateMinio("presign get object", err)
	}
	return u.String(), nil
}

func translateMinio(op string, err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code != "" {
		msg := resp.Message
		if msg == "" {
			msg = err.Error()
		}
		return NewError(op, resp.Code, msg, err)
	}
	return NewError(op, "", err.Error(), err)
}
