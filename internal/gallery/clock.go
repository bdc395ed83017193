package gallery

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval and sleeping so the upload polling loop is
// deterministic in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock uses the actual wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// IDGenerator abstracts unique ID generation so tests are deterministic.
// IDs label upload batches and notifications.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
