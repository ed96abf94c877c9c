package types

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionID represents a UUIDv7 workflow-node execution identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type ExecutionID string

// FileID represents a UUIDv7 identifier for an offloaded payload in blob
// storage. String alias enables type safety while maintaining JSON string
// serialization.
type FileID string

// NewExecutionID generates a UUIDv7 execution identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewExecutionID() ExecutionID {
	return ExecutionID(uuid.Must(uuid.NewV7()).String())
}

// NewFileID generates a UUIDv7 file identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewFileID() FileID {
	return FileID(uuid.Must(uuid.NewV7()).String())
}

// ParseExecutionID validates and converts a string to ExecutionID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseExecutionID(s string) (ExecutionID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ExecutionID(s), nil
}

// ParseFileID validates and converts a string to FileID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseFileID(s string) (FileID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return FileID(s), nil
}

// FileIDTime extracts the timestamp embedded in a UUIDv7 file ID.
// Enables age-based blob retention without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func FileIDTime(id FileID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
