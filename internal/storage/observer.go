package storage

import "time"

// Operation labels passed to Observer.RecordOperation.
const (
	OpList        = "list"
	OpListBuckets = "list_buckets"
	OpPresign     = "presign"
	OpGet         = "get"
	OpHead        = "head"
	OpDelete      = "delete"
)

// Observer captures telemetry for storage operations. Implementations must be
// safe for concurrent use.
type Observer interface {
	// RecordUpload is called once per Put with the total time across attempts.
	RecordUpload(duration time.Duration, sizeBytes int64, retries int, err error)
	RecordOperation(op string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, int64, int, error) {}

func (nopObserver) RecordOperation(string, time.Duration, error) {}
