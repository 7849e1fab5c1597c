package upload

import "fmt"

// Policy is the size and content-type policy applied to every upload before
// any backend call.
type Policy struct {
	MaxFileSize      int64
	AllowedMimeTypes map[string]bool
}

// NewPolicy builds a Policy from a size ceiling and an allow list.
func NewPolicy(maxFileSize int64, allowed []string) Policy {
	types := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		types[t] = true
	}
	return Policy{MaxFileSize: maxFileSize, AllowedMimeTypes: types}
}

// Validate checks a payload size and its declared content type. The declared
// type is advisory: an empty one is accepted, and payload bytes are never
// sniffed.
func (p Policy) Validate(size int64, contentType string) error {
	if size == 0 {
		return reject("File is empty")
	}
	if size > p.MaxFileSize {
		return p.oversized(size)
	}
	if contentType != "" && !p.AllowedMimeTypes[contentType] {
		return reject(fmt.Sprintf("File type %s not allowed", contentType))
	}
	return nil
}

// oversized reports size against the ceiling. A size at or below the ceiling
// means the real size is unknown, as for a body cut off while streaming.
func (p Policy) oversized(size int64) *RejectedError {
	if size > p.MaxFileSize {
		return reject(fmt.Sprintf("File size %d exceeds maximum %d", size, p.MaxFileSize))
	}
	return reject(fmt.Sprintf("File size exceeds maximum %d", p.MaxFileSize))
}
