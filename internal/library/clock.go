package library

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator abstracts unique ID generation for new components.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces the first block of a random UUID, which keeps
// component IDs short enough to read in listings.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String()[:8] }
