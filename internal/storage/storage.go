// Package storage is the single point of contact with the object-storage
// backend. Backend implementations (AWS S3 via aws-sdk-go-v2, or any
// S3-compatible service via minio-go) translate their native failures into
// *Error; Client layers the retry policy and the best-effort read semantics
// on top.
package storage

import (
	"context"
	"io"
	"time"
)

// DefaultContentType is reported when an object's type is unknown.
const DefaultContentType = "application/octet-stream"

// Backend is the remote capability a Client drives. A Backend is bound to one
// set of credentials at construction and is safe for concurrent use.
type Backend interface {
	// PutObject writes size bytes from body under bucket/key.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata map[string]string) error
	// GetObject returns the full object payload.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	// HeadObject returns object metadata without the payload.
	HeadObject(ctx context.Context, bucket, key string) (Metadata, error)
	// DeleteObject removes bucket/key.
	DeleteObject(ctx context.Context, bucket, key string) error
	// ListObjects lists one level below prefix, grouping deeper keys by delimiter.
	ListObjects(ctx context.Context, bucket, prefix, delimiter string) (RawListing, error)
	// ListBuckets enumerates the buckets visible to the credentials.
	ListBuckets(ctx context.Context) ([]Bucket, error)
	// PresignGetObject returns a time-limited download URL.
	PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// RawListing is a backend listing before folder/file shaping.
type RawListing struct {
	CommonPrefixes []string
	Objects        []ObjectInfo
}

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Bucket is one entry of a bucket enumeration.
type Bucket struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creation_date"`
}

// Metadata is the HEAD view of an object.
type Metadata struct {
	ContentType   string    `json:"content_type"`
	ContentLength int64     `json:"content_length"`
	LastModified  time.Time `json:"last_modified"`
	ETag          string    `json:"etag"`
}

// Folder is a common prefix one level below the listed prefix.
type Folder struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// File is an object directly under the listed prefix.
type File struct {
	Name         string    `json:"name"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectListing is the folder-style view returned by Client.List.
type ObjectListing struct {
	Folders       []Folder `json:"folders"`
	Files         []File   `json:"files"`
	CurrentPrefix string   `json:"current_prefix"`
}

// UploadOutcome is the result of one Put, including every retry it made.
type UploadOutcome struct {
	Success bool
	Key     string
	Retries int
	Error   string
}
