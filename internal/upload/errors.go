package upload

import (
	"fmt"

	"github.com/s3loader/service/internal/storage"
)

// RejectedError is a client input failure detected before any backend call.
type RejectedError struct {
	Reason string
	Err    error
}

func reject(reason string) *RejectedError {
	return &RejectedError{Reason: reason}
}

func (e *RejectedError) Error() string { return e.Reason }

func (e *RejectedError) Unwrap() error { return e.Err }

// FailedError reports a backend write that did not succeed, after any retries.
type FailedError struct {
	Outcome storage.UploadOutcome
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("upload %s failed after %d retries: %s", e.Outcome.Key, e.Outcome.Retries, e.Outcome.Error)
}
