package types

import (
	"time"

	"github.com/google/uuid"
)

// DocumentID represents a UUIDv7 archive identifier for a stored document.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential inserts cluster in B-tree pages.
type DocumentID string

// NewDocumentID generates a UUIDv7 document identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.Must(uuid.NewV7()).String())
}

// ParseDocumentID validates and converts a string to DocumentID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the archive.
func ParseDocumentID(s string) (DocumentID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return DocumentID(s), nil
}

// DocumentIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables time-based queries without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func DocumentIDTime(id DocumentID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
