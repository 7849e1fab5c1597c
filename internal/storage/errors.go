package storage

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure for retry and propagation decisions.
type Kind int

const (
	// KindPermanent failures are surfaced immediately and never retried.
	KindPermanent Kind = iota
	// KindTransient failures (throttling, internal errors) may succeed on retry.
	KindTransient
	// KindAuth failures mean the credentials were rejected.
	KindAuth
	// KindNotFound failures mean the bucket or key does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "permanent"
	}
}

var transientCodes = map[string]bool{
	"ThrottlingException": true,
	"Throttling":          true,
	"SlowDown":            true,
	"InternalError":       true,
	"ServiceUnavailable":  true,
}

var authCodes = map[string]bool{
	"InvalidAccessKeyId":           true,
	"SignatureDoesNotMatch":        true,
	"AccessDenied":                 true,
	"ExpiredToken":                 true,
	"InvalidToken":                 true,
	"AuthorizationHeaderMalformed": true,
}

var notFoundCodes = map[string]bool{
	"NoSuchKey":    true,
	"NoSuchBucket": true,
	"NotFound":     true,
}

// Classify maps a backend error code to its Kind.
func Classify(code string) Kind {
	switch {
	case transientCodes[code]:
		return KindTransient
	case authCodes[code]:
		return KindAuth
	case notFoundCodes[code]:
		return KindNotFound
	default:
		return KindPermanent
	}
}

// Error is a backend failure translated into the service's taxonomy.
type Error struct {
	Op      string // operation, e.g. "put object"
	Code    string // backend error code; empty when the backend gave none
	Message string
	Kind    Kind
	Cause   error
}

// NewError builds an Error whose Kind is derived from code.
func NewError(op, code, message string, cause error) *Error {
	return &Error{Op: op, Code: code, Message: message, Kind: Classify(code), Cause: cause}
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of err, or KindPermanent for errors that did not
// come from a backend.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindPermanent
}

// IsAuth reports whether err is a rejected-credentials failure.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// IsNotFound reports whether err means the bucket or key is absent.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
