// Package uuid issues the time-ordered identifiers used to correlate client dispatches with
// the mock service's request journal. It wraps github.com/google/uuid with version 7 as the
// only version produced.
package uuid

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// New returns a new UUIDv7. Panics if UUID generation fails.
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// NewRequestId returns a UUIDv7 string, falling back to a timestamp based ID if the
// random source fails.
func NewRequestId() string {
	u, err := uuid.NewV7()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

// Parse parses a UUID string into a UUID value.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// Timestamp extracts the creation time encoded in the top 48 bits of a UUIDv7.
func Timestamp(u UUID) time.Time {
	tsMillis := binary.BigEndian.Uint64(u[0:8]) >> 16
	return time.UnixMilli(int64(tsMillis))
}
