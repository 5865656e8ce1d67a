// Package idgen provides job and dispatch ID generation.
package idgen

import (
	"github.com/google/uuid"
)

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// NewJobID returns a job identifier with the given prefix, e.g.
// "job-1b4e28ba-2fa1-11d2-883f-0016d3cca427".
func NewJobID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
