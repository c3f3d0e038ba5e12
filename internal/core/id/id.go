// Package id provides identifiers for report runs and webhook sessions.
package id

import (
	"strconv"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used for journaled runs.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7 so journal rows sort by creation.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// sessionLen is the length of a short session identifier.
const sessionLen = 5

// NewSession returns a short numeric identifier used to correlate log lines
// of one webhook delivery. It is not unique across long periods.
func NewSession() string {
	u := uuid.New()
	var node uint64
	for _, b := range u[10:] {
		node = node<<8 | uint64(b)
	}
	s := strconv.FormatUint(node, 10)
	if len(s) > sessionLen {
		s = s[:sessionLen]
	}
	return s
}
